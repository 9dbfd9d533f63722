package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/redirgen/internal/content"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
)

func pairTo(source, targetURL string) redirect.Pair {
	return redirect.Pair{
		Source: source,
		Target: &content.Page{URLPath: targetURL},
	}
}

func TestQuoteForMap_PlainString_Unchanged(t *testing.T) {
	require.Equal(t, "/old/page/", QuoteForMap("/old/page/"))
}

func TestQuoteForMap_SpaceTriggersDoubleQuotes(t *testing.T) {
	require.Equal(t, `"/with space/"`, QuoteForMap("/with space/"))
}

func TestQuoteForMap_SemicolonAndBraces_Quoted(t *testing.T) {
	require.Equal(t, `"/a;b/"`, QuoteForMap("/a;b/"))
	require.Equal(t, `"/a{b}/"`, QuoteForMap("/a{b}/"))
}

func TestQuoteForMap_DollarAndBackslash_EscapedEvenUnquoted(t *testing.T) {
	require.Equal(t, `/a\$b/`, QuoteForMap("/a$b/"))
	require.Equal(t, `/a\\b/`, QuoteForMap(`/a\b/`))
}

func TestQuoteForMap_DoubleQuoteInString_SwitchesToSingleQuotes(t *testing.T) {
	require.Equal(t, `'/say-"hi"/'`, QuoteForMap(`/say-"hi"/`))
}

func TestQuoteForMap_BothQuoteKinds_KeepsDoubleQuotesAndEscapes(t *testing.T) {
	require.Equal(t, `"/mixed-\"it's\"/"`, QuoteForMap(`/mixed-"it's"/`))
}

func TestQuoteForMap_LeadingMapKeyword_EscapedWhenUnquoted(t *testing.T) {
	require.Equal(t, `\default`, QuoteForMap("default"))
	require.Equal(t, `\include/x`, QuoteForMap("include/x"))
	require.Equal(t, `\volatile`, QuoteForMap("volatile"))
	// Not at a word boundary: left alone.
	require.Equal(t, "defaults", QuoteForMap("defaults"))
	// Quoted strings need no keyword escaping.
	require.Equal(t, `"default x"`, QuoteForMap("default x"))
}

func TestEmit_WritesSortedQuotedEntries(t *testing.T) {
	dir := t.TempDir()
	em := NewMapEmitter(dir, "/redirects.map", "/")

	pairs := []redirect.Pair{
		pairTo("/alpha/", "/new-a/"),
		pairTo("/with space/", "/new-b/"),
	}
	sum, err := em.Emit(pairs)
	require.NoError(t, err)
	require.NotEmpty(t, sum)

	data, err := os.ReadFile(filepath.Join(dir, "redirects.map"))
	require.NoError(t, err)
	require.Equal(t, "/alpha/ /new-a/;\n\"/with space/\" /new-b/;\n", string(data))
}

func TestEmit_BasePath_JoinedIntoBothURLs(t *testing.T) {
	dir := t.TempDir()
	em := NewMapEmitter(dir, "redirects.map", "/site/")

	_, err := em.Emit([]redirect.Pair{pairTo("/old/", "/new/")})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "redirects.map"))
	require.NoError(t, err)
	require.Equal(t, "/site/old/ /site/new/;\n", string(data))
}

func TestEmit_NestedMapPath_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	em := NewMapEmitter(dir, "conf/redirects.map", "")

	_, err := em.Emit([]redirect.Pair{pairTo("/old/", "/new/")})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "conf", "redirects.map"))
}

func TestMapPath_LeadingSlashStripped(t *testing.T) {
	em := NewMapEmitter(t.TempDir(), "/etc/nginx/redirects.map", "")
	require.Equal(t, "etc/nginx/redirects.map", em.MapPath())
}

func TestChecksum_StableAndOrderSensitive(t *testing.T) {
	a := []redirect.Pair{pairTo("/old/", "/new/")}
	b := []redirect.Pair{pairTo("/old/", "/new/")}
	require.Equal(t, Checksum(a, "/"), Checksum(b, "/"))

	c := []redirect.Pair{pairTo("/old/", "/other/")}
	require.NotEqual(t, Checksum(a, "/"), Checksum(c, "/"))

	require.NotEmpty(t, Checksum(nil, "/"))
}

func TestChecksum_CoversBasePathJoinedURLs(t *testing.T) {
	pairs := []redirect.Pair{pairTo("/old/", "/new/")}
	joined := []redirect.Pair{pairTo("/site/old/", "/site/new/")}

	// The digest covers the URLs as written into the map, so changing the
	// base path changes the checksum.
	require.NotEqual(t, Checksum(pairs, "/"), Checksum(pairs, "/site/"))
	require.Equal(t, Checksum(joined, "/"), Checksum(pairs, "/site/"))
}
