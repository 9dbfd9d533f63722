package emit

import (
	"bytes"
	"crypto/md5" // #nosec G501 -- change-detection checksum, not a security boundary
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/redirgen/internal/logfields"
	"git.home.luguber.info/inful/redirgen/internal/redirect"
	"git.home.luguber.info/inful/redirgen/internal/urlpath"
)

// MapEmitter writes the aggregated nginx map file.
type MapEmitter struct {
	outputDir string
	mapFile   string // relative to outputDir, leading "/" stripped
	basePath  string // site base path joined into every URL
}

// NewMapEmitter creates a map emitter. mapFile is the configured map file
// path; a leading slash (or drive-style anchor) is stripped so the artifact
// always lands inside the output dir.
func NewMapEmitter(outputDir, mapFile, basePath string) *MapEmitter {
	return &MapEmitter{
		outputDir: outputDir,
		mapFile:   strings.TrimPrefix(filepath.ToSlash(filepath.Clean(mapFile)), "/"),
		basePath:  basePath,
	}
}

// MapPath returns the map file path relative to the output dir.
func (m *MapEmitter) MapPath() string { return m.mapFile }

// Emit renders and writes the map file and returns its checksum.
func (m *MapEmitter) Emit(pairs []redirect.Pair) (checksum string, err error) {
	body := m.render(pairs)

	full := filepath.Join(m.outputDir, filepath.FromSlash(m.mapFile))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create map file directory: %w", err)
	}
	if err := os.WriteFile(full, body, 0o644); err != nil { // #nosec G306 -- published build artifact
		return "", fmt.Errorf("write map file: %w", err)
	}

	sum := Checksum(pairs, m.basePath)
	slog.Info("Redirect map written",
		logfields.Path(full),
		logfields.Count(len(pairs)),
		logfields.Checksum(sum))
	return sum, nil
}

func (m *MapEmitter) render(pairs []redirect.Pair) []byte {
	var buf bytes.Buffer
	for _, pair := range pairs {
		from := urlpath.JoinBase(m.basePath, pair.Source)
		to := urlpath.JoinBase(m.basePath, pair.Target.URLPath)
		fmt.Fprintf(&buf, "%s %s;\n", QuoteForMap(from), QuoteForMap(to))
	}
	return buf.Bytes()
}

// Checksum returns the md5 hex digest over the pair list as it is rendered
// into the map (base path applied), used for change detection between builds.
func Checksum(pairs []redirect.Pair, basePath string) string {
	h := md5.New() // #nosec G401 -- change-detection checksum, not a security boundary
	for _, pair := range pairs {
		from := urlpath.JoinBase(basePath, pair.Source)
		to := urlpath.JoinBase(basePath, pair.Target.URLPath)
		fmt.Fprintf(h, "%s\x00%s\x00", from, to)
	}
	return hex.EncodeToString(h.Sum(nil))
}

var (
	needsQuoting = regexp.MustCompile(`[ "'{};]`)
	mapKeyword   = regexp.MustCompile(`^(default|hostnames|include|volatile)\b`)

	escapeBare   = regexp.MustCompile(`[$\\]`)
	escapeDouble = regexp.MustCompile(`["$\\]`)
	escapeSingle = regexp.MustCompile(`['$\\]`)
)

// QuoteForMap quotes a string, if necessary, for an nginx map file.
//
// Strings containing map syntax characters are wrapped in double quotes
// (single quotes when the string holds a double quote but no single quote).
// The active quote character, "$" and "\" are backslash-escaped. Unquoted
// strings starting with one of nginx's map special parameters get a leading
// backslash so they are treated as literals.
func QuoteForMap(s string) string {
	quot := ""
	specials := escapeBare
	if needsQuoting.MatchString(s) {
		quot, specials = `"`, escapeDouble
		if strings.Contains(s, `"`) && !strings.Contains(s, `'`) {
			quot, specials = `'`, escapeSingle
		}
	}

	escaped := specials.ReplaceAllString(s, `\$0`)
	if quot == "" && mapKeyword.MatchString(escaped) {
		escaped = `\` + escaped
	}
	return quot + escaped + quot
}
