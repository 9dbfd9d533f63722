package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestScan_MixedTree_ComputesCanonicalURLPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", "---\ntitle: Home\n---\n# Home\n")
	writeFile(t, dir, "blog/index.md", "# Blog\n")
	writeFile(t, dir, "blog/first-post.md", "---\ntitle: First\n---\nhi\n")
	writeFile(t, dir, "images/logo.png", "binary")

	pages, err := NewScanner(dir, "redirect_from").Scan()
	require.NoError(t, err)

	byURL := map[string]*Page{}
	for _, p := range pages {
		byURL[p.URLPath] = p
	}

	require.Contains(t, byURL, "/")
	require.Contains(t, byURL, "/blog/")
	require.Contains(t, byURL, "/blog/first-post/")
	require.Contains(t, byURL, "/images/logo.png")

	require.Equal(t, "Home", byURL["/"].Title)
	require.True(t, byURL["/images/logo.png"].IsAttachment)
	require.False(t, byURL["/blog/first-post/"].IsAttachment)
}

func TestScan_RedirectFromField_IsCollected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "---\nredirect_from:\n  - /old-guide/\n  - legacy\n---\nbody\n")

	pages, err := NewScanner(dir, "redirect_from").Scan()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, []string{"/old-guide/", "legacy"}, pages[0].RedirectFrom)
}

func TestScan_HiddenFilesAndDirs_AreSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".hidden/page.md", "x\n")
	writeFile(t, dir, ".draft.md", "x\n")
	writeFile(t, dir, "visible.md", "x\n")

	pages, err := NewScanner(dir, "redirect_from").Scan()
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "/visible/", pages[0].URLPath)
}

func TestScan_SortedByURLPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zebra.md", "x\n")
	writeFile(t, dir, "alpha.md", "x\n")

	pages, err := NewScanner(dir, "redirect_from").Scan()
	require.NoError(t, err)
	require.Equal(t, "/alpha/", pages[0].URLPath)
	require.Equal(t, "/zebra/", pages[1].URLPath)
}

func TestScan_MissingDirectory_ReturnsError(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "nope"), "redirect_from").Scan()
	require.Error(t, err)
}

func TestScan_BrokenFrontmatter_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: Hi\nno closing\n")

	_, err := NewScanner(dir, "redirect_from").Scan()
	require.Error(t, err)
}

func TestParentURLPath_WalksUpOneLevel(t *testing.T) {
	cases := map[string]string{
		"/":                  "/",
		"/blog/":             "/",
		"/blog/first-post/":  "/blog/",
		"/images/logo.png":   "/images/",
		"/a/b/c/":            "/a/b/",
	}
	for urlPath, want := range cases {
		p := &Page{URLPath: urlPath}
		require.Equal(t, want, p.ParentURLPath(), urlPath)
	}
}

func TestBody_StripsFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "page.md", "---\ntitle: Hi\n---\n# Heading\n")

	pages, err := NewScanner(dir, "redirect_from").Scan()
	require.NoError(t, err)
	require.Len(t, pages, 1)

	body, err := Body(pages[0])
	require.NoError(t, err)
	require.Equal(t, "# Heading\n", string(body))
}
