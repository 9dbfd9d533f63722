// Package content scans a site content tree into a flat list of pages and
// attachments with canonical URL paths.
package content

import (
	"path"
	"strings"
)

// Page represents a scanned content node: a markdown page or an attachment
// asset. Attachments carry no frontmatter.
type Page struct {
	Path         string   // absolute path to the source file
	RelativePath string   // path relative to the content directory
	URLPath      string   // canonical site-absolute URL path
	Title        string   // frontmatter title (pages only)
	RedirectFrom []string // declared legacy URLs, as written (not normalized)
	IsAttachment bool     // true for non-markdown files
}

// ParentURLPath returns the URL path of the page's parent directory page.
// The root page is its own parent. Declared redirect sources are interpreted
// relative to this path.
func (p *Page) ParentURLPath() string {
	if p.URLPath == "/" {
		return "/"
	}
	trimmed := strings.TrimSuffix(p.URLPath, "/")
	parent := path.Dir(trimmed)
	if parent == "/" {
		return "/"
	}
	return parent + "/"
}

// isIndexFile reports whether name is a directory's own page file.
func isIndexFile(name string) bool {
	switch strings.ToLower(name) {
	case "index.md", "readme.md", "_index.md":
		return true
	}
	return false
}

// urlPathFor computes the canonical URL path for a file at relPath within the
// content tree. Markdown pages get directory-style URLs; attachments keep
// their filename.
func urlPathFor(relPath string, isMarkdown bool) string {
	rel := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	dir, file := path.Split(rel)
	dir = "/" + strings.TrimPrefix(dir, "./")

	if !isMarkdown {
		return path.Join(dir, file)
	}
	if isIndexFile(file) {
		if dir == "/" {
			return "/"
		}
		return dir
	}
	base := strings.TrimSuffix(file, path.Ext(file))
	return path.Join(dir, base) + "/"
}
