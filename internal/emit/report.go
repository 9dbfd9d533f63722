package emit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/redirgen/internal/logfields"
)

// ReportFileName is the build report artifact written into the output dir.
const ReportFileName = "redirect-report.json"

// BuildReport summarizes one emission run. It is written to the output dir
// and appended to the history store.
type BuildReport struct {
	BuildID       string    `json:"build_id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Pages         int       `json:"pages"`          // scanned content nodes
	Redirects     int       `json:"redirects"`      // resolved valid pairs
	PagesEmitted  int       `json:"pages_emitted"`  // redirect pages written
	MapEmitted    bool      `json:"map_emitted"`
	MapChecksum   string    `json:"map_checksum,omitempty"`
	ContentCommit string    `json:"content_commit,omitempty"`
}

// NewBuildReport starts a report with a fresh build ID and, when contentDir
// sits inside a git work tree, the HEAD commit for provenance.
func NewBuildReport(contentDir string) *BuildReport {
	return &BuildReport{
		BuildID:       uuid.NewString(),
		StartedAt:     time.Now().UTC(),
		ContentCommit: headCommit(contentDir),
	}
}

// Finish stamps the end time and returns the report for chaining.
func (r *BuildReport) Finish() *BuildReport {
	r.FinishedAt = time.Now().UTC()
	return r
}

// Duration returns the wall-clock build duration.
func (r *BuildReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Write serializes the report into the output dir.
func (r *BuildReport) Write(outputDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	full := filepath.Join(outputDir, ReportFileName)
	if err := os.WriteFile(full, append(data, '\n'), 0o644); err != nil { // #nosec G306 -- published build artifact
		return fmt.Errorf("write build report: %w", err)
	}
	slog.Debug("Build report written", logfields.Path(full), logfields.BuildID(r.BuildID))
	return nil
}

// headCommit resolves the HEAD commit of the repository containing dir.
// Content trees outside a git work tree simply get no provenance.
func headCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}
