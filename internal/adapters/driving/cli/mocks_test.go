package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-docsearch/internal/core/domain"
)

// mockIngestPipeline implements driving.IngestionPipeline for testing.
type mockIngestPipeline struct {
	report *domain.RunReport
	err    error
	opts   []domain.RunOptions
}

func (m *mockIngestPipeline) Run(_ context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	m.opts = append(m.opts, opts)
	return m.report, m.err
}

// mockSearchService implements driving.SearchService for testing.
type mockSearchService struct {
	hits      []domain.SearchHit
	err       error
	healthErr error
	terms     []string
}

func (m *mockSearchService) Search(_ context.Context, term string) ([]domain.SearchHit, error) {
	m.terms = append(m.terms, term)
	return m.hits, m.err
}

func (m *mockSearchService) HealthCheck(context.Context) error {
	return m.healthErr
}

// mockRunHistory implements driving.RunHistory for testing.
type mockRunHistory struct {
	runs      []domain.RunReport
	err       error
	lastLimit int
}

func (m *mockRunHistory) Latest(context.Context) (*domain.RunReport, error) {
	if len(m.runs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.runs[0], nil
}

func (m *mockRunHistory) List(_ context.Context, limit int) ([]domain.RunReport, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

// mockIndexAdmin implements IndexAdmin for testing.
type mockIndexAdmin struct {
	count     int
	ensureErr error
	ensured   int
}

func (m *mockIndexAdmin) EnsureSchema(context.Context) error {
	m.ensured++
	return m.ensureErr
}

func (m *mockIndexAdmin) Count(context.Context) (int, error) {
	return m.count, nil
}

type testServices struct {
	ingest *mockIngestPipeline
	search *mockSearchService
	runs   *mockRunHistory
	index  *mockIndexAdmin
}

// setupTestServices installs mocks and points configuration at an empty
// temp directory so the developer's own files are never read.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	ts := &testServices{
		ingest: &mockIngestPipeline{report: &domain.RunReport{}},
		search: &mockSearchService{},
		runs:   &mockRunHistory{},
		index:  &mockIndexAdmin{},
	}

	isolateConfig(t)
	oldBuilder := builder
	builder = nil
	SetServices(&Services{
		Ingest: ts.ingest,
		Search: ts.search,
		Runs:   ts.runs,
		Index:  ts.index,
	})

	t.Cleanup(func() {
		builder = oldBuilder
		SetServices(nil)
	})
	return ts
}

func isolateConfig(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	oldPath, oldEnv, oldCfg := configPath, dotEnvPath, cfg
	configPath = filepath.Join(dir, "config.toml")
	dotEnvPath = filepath.Join(dir, ".env")
	for _, key := range []string{
		"DROPBOX_TOKEN", "DROPBOX_REFRESH_TOKEN", "DROPBOX_APP_KEY", "DROPBOX_APP_SECRET",
		"CLUSTER_ENDPOINT", "ES_API_KEY", "DOCSEARCH_INDEX_BACKEND", "DOCSEARCH_INDEX_NAME",
		"DOCSEARCH_BLEVE_PATH", "DOCSEARCH_DATA_DIR",
	} {
		t.Setenv(key, "")
	}

	t.Cleanup(func() {
		configPath, dotEnvPath, cfg = oldPath, oldEnv, oldCfg
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := runRoot(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so earlier executions
// do not leak into later ones. The config paths set by isolateConfig
// are kept.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "env-file" {
			return
		}
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
