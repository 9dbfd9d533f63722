package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyPage       = "page"
	KeySource     = "source"
	KeyTarget     = "target"
	KeyCount      = "count"
	KeyBuildID    = "build_id"
	KeyChecksum   = "checksum"
	KeyDurationMS = "duration_ms"
	KeyPort       = "port"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Source(u string) slog.Attr       { return slog.String(KeySource, u) }
func Target(u string) slog.Attr       { return slog.String(KeyTarget, u) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Checksum(sum string) slog.Attr   { return slog.String(KeyChecksum, sum) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func Subject(s string) slog.Attr      { return slog.String(KeySubject, s) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
