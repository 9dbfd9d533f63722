package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/redirgen/internal/config"
	"git.home.luguber.info/inful/redirgen/internal/history"
	"git.home.luguber.info/inful/redirgen/internal/notify"
)

func writeContent(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	contentDir := t.TempDir()
	writeContent(t, contentDir, "index.md", "# Home\n")
	writeContent(t, contentDir, "guide.md", "---\ntitle: Guide\nredirect_from:\n  - /old-guide/\n---\nbody\n")

	cfg := &config.Config{
		Site:    config.SiteConfig{BasePath: "/"},
		Content: config.ContentConfig{Directory: contentDir, RedirectField: config.DefaultRedirectField},
		Redirects: config.RedirectsConfig{
			MapFile: "redirects.map",
		},
	}
	return cfg, contentDir
}

func TestBuild_EmitsPagesMapAndReport(t *testing.T) {
	cfg, _ := testConfig(t)
	out := t.TempDir()

	result, err := New(cfg, out).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Report.Pages)
	require.Equal(t, 1, result.Report.Redirects)
	require.Equal(t, 1, result.Report.PagesEmitted)
	require.True(t, result.Report.MapEmitted)
	require.NotEmpty(t, result.Report.MapChecksum)

	require.FileExists(t, filepath.Join(out, "old-guide", "index.html"))
	require.FileExists(t, filepath.Join(out, "redirects.map"))
	require.FileExists(t, filepath.Join(out, "redirect-report.json"))

	data, err := os.ReadFile(filepath.Join(out, "redirects.map"))
	require.NoError(t, err)
	require.Equal(t, "/old-guide/ /guide/;\n", string(data))
}

func TestBuild_PagesDisabled_OnlyMapEmitted(t *testing.T) {
	cfg, _ := testConfig(t)
	empty := ""
	cfg.Redirects.Template = &empty
	out := t.TempDir()

	result, err := New(cfg, out).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.Report.PagesEmitted)
	require.NoFileExists(t, filepath.Join(out, "old-guide", "index.html"))
	require.FileExists(t, filepath.Join(out, "redirects.map"))
}

func TestBuild_MapDisabled_OnlyPagesEmitted(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Redirects.MapFile = ""
	out := t.TempDir()

	result, err := New(cfg, out).Build(context.Background())
	require.NoError(t, err)
	require.False(t, result.Report.MapEmitted)
	require.FileExists(t, filepath.Join(out, "old-guide", "index.html"))
	require.NoFileExists(t, filepath.Join(out, "redirects.map"))
}

func TestBuild_CleanOutput_RemovesStaleArtifacts(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Output.Clean = true
	out := t.TempDir()
	writeContent(t, out, "stale/index.html", "old\n")
	writeContent(t, out, ".keep/marker", "hidden survives clean\n")

	_, err := New(cfg, out).Build(context.Background())
	require.NoError(t, err)
	require.NoDirExists(t, filepath.Join(out, "stale"))
	require.FileExists(t, filepath.Join(out, ".keep", "marker"))
}

func TestBuild_MissingContentDir_ReturnsError(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Content.Directory = filepath.Join(t.TempDir(), "nope")

	_, err := New(cfg, t.TempDir()).Build(context.Background())
	require.Error(t, err)
}

func TestBuild_HistoryStore_RecordsBuild(t *testing.T) {
	cfg, _ := testConfig(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = New(cfg, t.TempDir()).SetHistory(store).Build(context.Background())
	require.NoError(t, err)

	reports, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, 1, reports[0].Redirects)
}

type fakeNotifier struct {
	events []notify.MapChangeEvent
}

func (f *fakeNotifier) PublishMapChange(e notify.MapChangeEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeNotifier) Close() {}

func TestBuild_Notifier_PublishedOnMapEmission(t *testing.T) {
	cfg, _ := testConfig(t)
	fake := &fakeNotifier{}

	result, err := New(cfg, t.TempDir()).SetNotifier(fake).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.events, 1)
	require.Equal(t, result.Report.MapChecksum, fake.events[0].Checksum)
	require.Equal(t, "redirects.map", fake.events[0].MapPath)
}

func TestBuild_UnchangedMapWithHistory_SkipsNotification(t *testing.T) {
	cfg, _ := testConfig(t)
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	fake := &fakeNotifier{}

	b := New(cfg, t.TempDir()).SetHistory(store).SetNotifier(fake)
	_, err = b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.events, 1)

	// Second build produces the same map; no new event.
	_, err = b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, fake.events, 1)
}

func TestBuild_ResultIndex_ResolvesSources(t *testing.T) {
	cfg, _ := testConfig(t)

	result, err := New(cfg, t.TempDir()).Build(context.Background())
	require.NoError(t, err)

	target := result.Index.Lookup("/old-guide/")
	require.NotNil(t, target)
	require.Equal(t, "/guide/", target.URLPath)
}
