// Package emit turns resolved redirect pairs into build artifacts: static
// redirect pages and the aggregated nginx map file.
package emit

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
	"git.home.luguber.info/inful/redirgen/internal/urlpath"
)

//go:embed templates/redirect.html
var builtinTemplates embed.FS

// PageContext is the data bound into the redirect template.
type PageContext struct {
	Source  string // the legacy URL this page answers
	Target  string // absolute target URL path (base path applied)
	Title   string // target page title, may be empty
	BaseURL string // configured site base URL, may be empty
}

// PageEmitter renders one redirect page per resolved pair.
type PageEmitter struct {
	outputDir string
	basePath  string
	siteURL   string
	tmpl      *template.Template
}

// NewPageEmitter loads the redirect template from templatePath; when the file
// does not exist the embedded default is used. An unparseable template file
// is an error, not a fallback.
func NewPageEmitter(outputDir, templatePath, basePath, siteURL string) (*PageEmitter, error) {
	tmpl, err := loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return &PageEmitter{
		outputDir: outputDir,
		basePath:  basePath,
		siteURL:   siteURL,
		tmpl:      tmpl,
	}, nil
}

func loadTemplate(templatePath string) (*template.Template, error) {
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		switch {
		case err == nil:
			tmpl, err := template.New(filepath.Base(templatePath)).Parse(string(data))
			if err != nil {
				return nil, fmt.Errorf("parse redirect template %s: %w", templatePath, err)
			}
			return tmpl, nil
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read redirect template %s: %w", templatePath, err)
		}
		slog.Debug("Redirect template not found, using built-in", logfields.Path(templatePath))
	}

	tmpl, err := template.ParseFS(builtinTemplates, "templates/redirect.html")
	if err != nil {
		return nil, fmt.Errorf("parse built-in redirect template: %w", err)
	}
	return tmpl, nil
}

// Emit writes one redirect page per pair and returns the number written.
func (e *PageEmitter) Emit(pairs []redirect.Pair) (int, error) {
	written := 0
	for _, pair := range pairs {
		if err := e.emitOne(pair); err != nil {
			return written, err
		}
		written++
	}
	slog.Info("Redirect pages written", logfields.Count(written))
	return written, nil
}

func (e *PageEmitter) emitOne(pair redirect.Pair) error {
	target := urlpath.JoinBase(e.basePath, pair.Target.URLPath)
	ctx := PageContext{
		Source:  pair.Source,
		Target:  target,
		Title:   pair.Target.Title,
		BaseURL: e.siteURL,
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, ctx); err != nil {
		return fmt.Errorf("render redirect page for %s: %w", pair.Source, err)
	}

	if !pointsAtTarget(buf.Bytes(), target) {
		slog.Warn("Rendered redirect page does not reference its target",
			logfields.Source(pair.Source),
			logfields.Target(target))
	}

	rel := urlpath.ArtifactName(pair.Source)
	full := filepath.Join(e.outputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create redirect page directory: %w", err)
	}
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- published build artifact
		return fmt.Errorf("write redirect page %s: %w", rel, err)
	}

	slog.Debug("Redirect page written",
		logfields.Source(pair.Source),
		logfields.Target(target),
		logfields.Path(full))
	return nil
}

// pointsAtTarget parses rendered HTML and looks for a meta refresh or
// canonical link mentioning the target URL. Warn-only sanity check for
// user-supplied templates.
func pointsAtTarget(rendered []byte, target string) bool {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return false
	}

	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if attrVal(n, "http-equiv") == "refresh" && strings.Contains(attrVal(n, "content"), target) {
					found = true
				}
			case "link":
				if attrVal(n, "rel") == "canonical" && strings.Contains(attrVal(n, "href"), target) {
					found = true
				}
			case "a":
				if strings.Contains(attrVal(n, "href"), target) {
					found = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
