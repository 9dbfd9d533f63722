package redirect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/redirgen/internal/content"
)

func page(urlPath string, redirectFrom ...string) *content.Page {
	return &content.Page{
		URLPath:      urlPath,
		RelativePath: urlPath,
		RedirectFrom: redirectFrom,
	}
}

func TestSourceURLs_AbsoluteSources_NormalizedAsIs(t *testing.T) {
	p := page("/about/", "/old-about", "/really//old/about/")
	require.Equal(t, []string{"/old-about/", "/really/old/about/"}, SourceURLs(p))
}

func TestSourceURLs_RelativeSources_JoinAgainstParentURL(t *testing.T) {
	p := page("/blog/first-post/", "initial-post")
	// Parent of /blog/first-post/ is /blog/.
	require.Equal(t, []string{"/blog/initial-post/"}, SourceURLs(p))
}

func TestSourceURLs_SelfRedirect_Dropped(t *testing.T) {
	p := page("/about/", "/about/", "/old/")
	require.Equal(t, []string{"/old/"}, SourceURLs(p))
}

func TestSourceURLs_Duplicates_Deduplicated(t *testing.T) {
	p := page("/about/", "/old/", "/old")
	require.Equal(t, []string{"/old/"}, SourceURLs(p))
}

func TestSourceURLs_NoDeclarations_ReturnsNil(t *testing.T) {
	require.Nil(t, SourceURLs(page("/about/")))
}

func TestLookup_SingleClaimant_ReturnsTarget(t *testing.T) {
	target := page("/new/", "/old/")
	idx := NewIndex([]*content.Page{target})

	require.Equal(t, target, idx.Lookup("/old/"))
	require.Nil(t, idx.Lookup("/missing/"))
}

func TestLookup_MultipleClaimants_SmallestURLWins(t *testing.T) {
	b := page("/b/", "/old/")
	a := page("/a/", "/old/")
	idx := NewIndex([]*content.Page{b, a})

	require.Equal(t, a, idx.Lookup("/old/"))
}

func TestValidate_ShadowingExistingPage_ReturnsShadowError(t *testing.T) {
	existing := page("/docs/")
	claimant := page("/new/", "/docs/")
	idx := NewIndex([]*content.Page{existing, claimant})

	err := idx.Validate("/docs/", claimant)
	require.Error(t, err)
	require.IsType(t, &ShadowError{}, err)
}

func TestValidate_ConflictingClaimants_ReturnsConflictError(t *testing.T) {
	a := page("/a/", "/old/")
	b := page("/b/", "/old/")
	idx := NewIndex([]*content.Page{a, b})

	err := idx.Validate("/old/", a)
	require.Error(t, err)
	require.IsType(t, &ConflictError{}, err)
}

func TestValidate_SelfRedirect_ReturnsSelfRedirectError(t *testing.T) {
	p := page("/a/")
	idx := NewIndex([]*content.Page{p})

	err := idx.Validate("/a/", p)
	require.Error(t, err)
	require.IsType(t, &SelfRedirectError{}, err)
}

func TestValidate_CleanClaim_ReturnsNil(t *testing.T) {
	p := page("/new/", "/old/")
	idx := NewIndex([]*content.Page{p})
	require.Nil(t, idx.Validate("/old/", p))
}

func TestPairs_SortedDeduplicatedAndValidated(t *testing.T) {
	a := page("/new-a/", "/zeta/", "/alpha/")
	b := page("/new-b/", "/mid/")
	idx := NewIndex([]*content.Page{a, b})

	pairs := idx.Pairs()
	require.Len(t, pairs, 3)
	require.Equal(t, "/alpha/", pairs[0].Source)
	require.Equal(t, "/mid/", pairs[1].Source)
	require.Equal(t, "/zeta/", pairs[2].Source)
	require.Equal(t, a, pairs[0].Target)
	require.Equal(t, b, pairs[1].Target)
}

func TestPairs_ConflictingSource_ExcludedEntirely(t *testing.T) {
	a := page("/a/", "/old/")
	b := page("/b/", "/old/")
	idx := NewIndex([]*content.Page{a, b})

	require.Empty(t, idx.Pairs())
}

func TestPairs_ShadowedSource_Excluded(t *testing.T) {
	existing := page("/docs/")
	claimant := page("/new/", "/docs/", "/fine/")
	idx := NewIndex([]*content.Page{existing, claimant})

	pairs := idx.Pairs()
	require.Len(t, pairs, 1)
	require.Equal(t, "/fine/", pairs[0].Source)
}

func TestPagePairs_ReturnsOnlyValidClaimsOfThatPage(t *testing.T) {
	existing := page("/docs/")
	p := page("/new/", "/docs/", "/legacy/")
	idx := NewIndex([]*content.Page{existing, p})

	pairs := idx.PagePairs(p)
	require.Len(t, pairs, 1)
	require.Equal(t, "/legacy/", pairs[0].Source)
	require.Equal(t, p, pairs[0].Target)
}

func TestProblems_ReportsEveryInvalidClaim(t *testing.T) {
	existing := page("/docs/")
	a := page("/a/", "/old/", "/docs/")
	b := page("/b/", "/old/")
	idx := NewIndex([]*content.Page{existing, a, b})

	problems := idx.Problems()
	require.Len(t, problems, 3) // /docs/ shadow + both /old/ claimants
}

func TestProblems_CleanSite_ReturnsEmpty(t *testing.T) {
	idx := NewIndex([]*content.Page{page("/new/", "/old/")})
	require.Empty(t, idx.Problems())
}

func TestRelativeSourceOfAttachment_JoinsAgainstContainingDir(t *testing.T) {
	att := &content.Page{
		URLPath:      "/images/logo.png",
		RelativePath: "images/logo.png",
		RedirectFrom: []string{"old-logo.png"},
		IsAttachment: true,
	}
	require.Equal(t, []string{"/images/old-logo.png"}, SourceURLs(att))
}
