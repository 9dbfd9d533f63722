// Package urlpath implements the URL path conventions shared by the scanner
// and the redirect emitters.
//
// All URL paths handled here are site-absolute POSIX-style paths. Paths that
// address a page end with "/"; paths that address a file keep their extension.
package urlpath

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns a normalized, absolute URL path for s.
//
// If s does not start with "/", it is interpreted relative to base (which must
// be an absolute URL path). The result is cleaned (".." and "." collapsed,
// duplicate slashes removed), NFC-normalized, and given a trailing "/" when
// its final segment contains no ".".
func Normalize(base, s string) string {
	if !strings.HasPrefix(s, "/") {
		s = path.Join(base, s)
	}
	s = path.Clean(s)
	s = norm.NFC.String(s)
	if !strings.Contains(path.Base(s), ".") && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// JoinBase joins an absolute URL path onto a site base path, preserving the
// trailing slash of the joined path. A base of "" or "/" leaves the path
// unchanged.
func JoinBase(basePath, urlPath string) string {
	if basePath == "" || basePath == "/" {
		return urlPath
	}
	joined := path.Join(basePath, strings.TrimPrefix(urlPath, "/"))
	if strings.HasSuffix(urlPath, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}

// IsHTML reports whether the URL path ends in an HTML file extension.
func IsHTML(urlPath string) bool {
	switch strings.ToLower(path.Ext(urlPath)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// ArtifactName maps a redirect source URL path to the relative output path of
// the redirect page that answers it.
//
//	/a/b/      -> a/b/index.html
//	/a/b.html  -> a/b.html
//	/a/b.ext   -> a/b.ext/index.html
func ArtifactName(urlPath string) string {
	name := urlPath
	switch {
	case strings.HasSuffix(name, "/"):
		name += "index.html"
	case !IsHTML(name):
		name += "/index.html"
	}
	return strings.TrimPrefix(name, "/")
}
