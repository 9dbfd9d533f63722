package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/redirgen/internal/logfields"
)

// Scanner walks a content directory and produces the page list the redirect
// index is built from.
type Scanner struct {
	contentDir    string
	redirectField string
}

// NewScanner creates a scanner rooted at contentDir. redirectField is the
// frontmatter key holding declared legacy URLs.
func NewScanner(contentDir, redirectField string) *Scanner {
	return &Scanner{contentDir: contentDir, redirectField: redirectField}
}

// Scan walks the content tree once and returns every page and attachment,
// sorted by URL path. Hidden files and directories (dot-prefixed) are
// skipped, as are empty directories.
func (s *Scanner) Scan() ([]*Page, error) {
	absDir, err := filepath.Abs(s.contentDir)
	if err != nil {
		return nil, fmt.Errorf("resolve content dir: %w", err)
	}
	if st, err := os.Stat(absDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("content dir not found or not a directory: %s", absDir)
	}

	var pages []*Page
	err = filepath.WalkDir(absDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && p != absDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(absDir, p)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		page, err := s.loadPage(p, rel)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan content tree: %w", err)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].URLPath < pages[j].URLPath })

	slog.Debug("Content tree scanned",
		logfields.Path(absDir),
		logfields.Count(len(pages)))
	return pages, nil
}

func (s *Scanner) loadPage(absPath, relPath string) (*Page, error) {
	isMarkdown := strings.EqualFold(filepath.Ext(relPath), ".md")

	page := &Page{
		Path:         absPath,
		RelativePath: relPath,
		URLPath:      urlPathFor(relPath, isMarkdown),
		IsAttachment: !isMarkdown,
	}
	if !isMarkdown {
		return page, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", relPath, err)
	}

	fm, _, had, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", relPath, err)
	}
	if !had {
		return page, nil
	}

	meta, err := parseMeta(fm, s.redirectField)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", relPath, err)
	}
	page.Title = meta.Title
	page.RedirectFrom = meta.RedirectFrom
	return page, nil
}

// Body returns the markdown body of a page with frontmatter stripped.
// Attachments return nil.
func Body(p *Page) ([]byte, error) {
	if p.IsAttachment {
		return nil, nil
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", p.RelativePath, err)
	}
	_, body, _, err := splitFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.RelativePath, err)
	}
	return body, nil
}
