// Package linkcheck finds internal markdown links that point at a redirect
// source instead of the canonical target. Those links still work once the
// redirect artifacts are deployed, but each hop costs a round trip and rots
// silently; the check command surfaces them.
package linkcheck

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/redirgen/internal/content"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
	"git.home.luguber.info/inful/redirgen/internal/urlpath"
)

// StaleLink is one internal link that resolves through a redirect.
type StaleLink struct {
	Page        string // relative path of the page holding the link
	Destination string // the link destination as written
	Source      string // normalized redirect source it hits
	Target      string // canonical URL the author should link instead
}

func (s StaleLink) String() string {
	return fmt.Sprintf("%s links %q which redirects to %q", s.Page, s.Destination, s.Target)
}

// Run extracts links from every markdown page and reports the ones whose
// destination is a known redirect source.
func Run(pages []*content.Page, idx *redirect.Index) ([]StaleLink, error) {
	var stale []StaleLink
	for _, p := range pages {
		if p.IsAttachment {
			continue
		}
		body, err := content.Body(p)
		if err != nil {
			return nil, err
		}
		for _, dest := range extractDestinations(body) {
			normalized, ok := normalizeInternal(p, dest)
			if !ok {
				continue
			}
			target := idx.Lookup(normalized)
			if target == nil {
				continue
			}
			stale = append(stale, StaleLink{
				Page:        p.RelativePath,
				Destination: dest,
				Source:      normalized,
				Target:      target.URLPath,
			})
		}
	}
	return stale, nil
}

// extractDestinations parses a markdown body and collects link and image
// destinations, reference definitions included (goldmark resolves those onto
// the link nodes).
func extractDestinations(body []byte) []string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var dests []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Link:
			dests = append(dests, string(node.Destination))
		case *gmast.Image:
			dests = append(dests, string(node.Destination))
		case *gmast.AutoLink:
			dests = append(dests, string(node.URL(body)))
		}
		return gmast.WalkContinue, nil
	})
	return dests
}

// normalizeInternal turns a link destination into a normalized site URL
// path. External links, anchors and mailto/scheme links report ok=false.
// Relative destinations resolve against the page's own URL, the way a
// browser would resolve them.
func normalizeInternal(p *content.Page, dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return urlpath.Normalize(p.URLPath, u.Path), true
}
