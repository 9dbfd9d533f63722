package content

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a document opened a YAML frontmatter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var fmDelim = []byte("---")

// splitFrontmatter separates a `---` delimited YAML frontmatter block from
// the markdown body. If the document does not start with a delimiter, had is
// false and body is the full input. CRLF documents are accepted.
func splitFrontmatter(doc []byte) (fm, body []byte, had bool, err error) {
	nl := detectNewline(doc)

	open := append(append([]byte{}, fmDelim...), nl...)
	if !bytes.HasPrefix(doc, open) {
		return nil, doc, false, nil
	}
	rest := doc[len(open):]

	// An immediately closing delimiter means an empty block.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := append(append(append([]byte{}, nl...), fmDelim...), nl...)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
}

// detectNewline keys off the first line break in the document, so a mixed-EOL
// file follows the style of its frontmatter delimiters, not of its body.
func detectNewline(doc []byte) []byte {
	if i := bytes.IndexByte(doc, '\n'); i > 0 && doc[i-1] == '\r' {
		return []byte("\r\n")
	}
	return []byte("\n")
}

// pageMeta is the subset of frontmatter redirgen reads.
type pageMeta struct {
	Title        string
	RedirectFrom []string
}

// parseMeta decodes the frontmatter fields redirgen cares about. The redirect
// field accepts either a single string or a sequence of strings; field is the
// configured frontmatter key (e.g. "redirect_from").
func parseMeta(fm []byte, field string) (pageMeta, error) {
	var meta pageMeta
	if len(fm) == 0 {
		return meta, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return meta, fmt.Errorf("parse frontmatter: %w", err)
	}

	if title, ok := fields["title"].(string); ok {
		meta.Title = title
	}

	switch v := fields[field].(type) {
	case nil:
	case string:
		meta.RedirectFrom = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return meta, fmt.Errorf("frontmatter field %q: entries must be strings, got %T", field, item)
			}
			meta.RedirectFrom = append(meta.RedirectFrom, s)
		}
	default:
		return meta, fmt.Errorf("frontmatter field %q: expected string or list of strings, got %T", field, v)
	}
	return meta, nil
}
