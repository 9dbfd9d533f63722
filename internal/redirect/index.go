// Package redirect builds the source-URL index that both artifact emitters
// consume: every declared legacy URL, normalized, mapped to the page it
// should bounce to, with conflicting declarations detected and excluded.
package redirect

import (
	"log/slog"
	"sort"

	"git.home.luguber.info/inful/redirgen/internal/content"
	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/urlpath"
	"git.home.luguber.info/inful/redirgen/internal/util/sets"
)

// Pair is one resolved redirect: a normalized source URL and the target page.
type Pair struct {
	Source string
	Target *content.Page
}

// Index maps normalized source URL paths to target pages for one scanned
// content tree. Build it once per build; it is read-only afterwards.
type Index struct {
	redirects  map[string][]*content.Page // source url -> claimants, sorted by target URL
	pagesByURL map[string]*content.Page
}

// SourceURLs returns the normalized redirect sources declared by a single
// page: each entry of its redirect field joined against the parent page URL.
// Self-redirects are dropped. No conflict checking happens here.
func SourceURLs(p *content.Page) []string {
	if len(p.RedirectFrom) == 0 {
		return nil
	}
	base := p.ParentURLPath()
	urls := sets.New[string]()
	for _, raw := range p.RedirectFrom {
		u := urlpath.Normalize(base, raw)
		if u == p.URLPath {
			continue
		}
		urls.Add(u)
	}
	return sets.Sorted(urls)
}

// NewIndex walks the page list once and builds the redirect index.
func NewIndex(pages []*content.Page) *Index {
	idx := &Index{
		redirects:  make(map[string][]*content.Page),
		pagesByURL: make(map[string]*content.Page, len(pages)),
	}
	for _, p := range pages {
		idx.pagesByURL[p.URLPath] = p
	}
	for _, p := range pages {
		for _, source := range SourceURLs(p) {
			idx.redirects[source] = append(idx.redirects[source], p)
		}
	}
	for _, claimants := range idx.redirects {
		sort.Slice(claimants, func(i, j int) bool {
			return claimants[i].URLPath < claimants[j].URLPath
		})
	}
	return idx
}

// Lookup returns the winning target for a source URL, or nil. When several
// pages claim the same source, the one with the lexically smallest URL path
// wins; Validate reports the losers.
func (idx *Index) Lookup(source string) *content.Page {
	claimants := idx.redirects[source]
	if len(claimants) == 0 {
		return nil
	}
	return claimants[0]
}

// Sources returns every claimed source URL in sorted order.
func (idx *Index) Sources() []string {
	out := make([]string, 0, len(idx.redirects))
	for source := range idx.redirects {
		out = append(out, source)
	}
	sort.Strings(out)
	return out
}

// Page returns the scanned page owning a canonical URL path, if any.
func (idx *Index) Page(urlPath string) *content.Page {
	return idx.pagesByURL[urlPath]
}

// Validate checks one source/target claim against the rest of the site and
// returns the reason it is invalid, or nil.
func (idx *Index) Validate(source string, target *content.Page) InvalidRedirect {
	if source == target.URLPath {
		return &SelfRedirectError{Source: source, Target: target.URLPath}
	}
	if existing := idx.pagesByURL[source]; existing != nil {
		return &ShadowError{Source: source, Target: target.URLPath, Existing: existing.RelativePath}
	}
	for _, other := range idx.redirects[source] {
		if other != target {
			return &ConflictError{Source: source, Target: target.URLPath, Conflict: other.URLPath}
		}
	}
	return nil
}

// Pairs returns the final, emittable redirect list: sorted by source URL,
// deduplicated, invalid claims excluded. Each skipped claim is logged as a
// warning.
func (idx *Index) Pairs() []Pair {
	pairs := make([]Pair, 0, len(idx.redirects))
	for _, source := range idx.Sources() {
		target := idx.Lookup(source)
		if err := idx.Validate(source, target); err != nil {
			slog.Warn("Invalid redirect skipped",
				logfields.Source(source),
				logfields.Target(target.URLPath),
				logfields.Error(err))
			continue
		}
		pairs = append(pairs, Pair{Source: source, Target: target})
	}
	return pairs
}

// PagePairs returns the valid redirects declared by a single page, for
// per-page artifact emission. Invalid claims are logged and skipped.
func (idx *Index) PagePairs(p *content.Page) []Pair {
	var pairs []Pair
	for _, source := range SourceURLs(p) {
		if err := idx.Validate(source, p); err != nil {
			slog.Warn("Invalid redirect skipped",
				logfields.Source(source),
				logfields.Target(p.URLPath),
				logfields.Error(err))
			continue
		}
		pairs = append(pairs, Pair{Source: source, Target: p})
	}
	return pairs
}

// Problems re-validates every claim by every claimant and returns the full
// conflict list, for the check command. Winners that validate cleanly are not
// included.
func (idx *Index) Problems() []InvalidRedirect {
	var problems []InvalidRedirect
	for _, source := range idx.Sources() {
		for _, target := range idx.redirects[source] {
			if err := idx.Validate(source, target); err != nil {
				problems = append(problems, err)
			}
		}
	}
	return problems
}
