// Package cli provides the docsearch command line interface.
//
// Commands talk to driving ports only. The process entry point supplies a
// Builder that turns loaded configuration into those ports, so the
// commands never construct adapters themselves.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/config"
	"github.com/custodia-labs/sercha-docsearch/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-docsearch/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Annotation keys read by the root pre-run hook.
const (
	// annotationNoServices marks commands that only need configuration.
	annotationNoServices = "docsearch/no-services"
	// annotationNeedsSource marks commands that download from Dropbox.
	annotationNeedsSource = "docsearch/needs-source"
)

// IndexAdmin is the slice of the search index the maintenance commands use.
type IndexAdmin interface {
	EnsureSchema(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Services holds everything the commands call into.
type Services struct {
	Ingest driving.IngestionPipeline
	Search driving.SearchService
	Runs   driving.RunHistory
	Index  IndexAdmin

	// Close releases the index and stores. May be nil.
	Close func() error
}

// Requirements tells a Builder which optional parts to construct.
type Requirements struct {
	// Source asks for the Dropbox source and the ingestion pipeline.
	// Without it the Builder must not require Dropbox credentials.
	Source bool
}

// Builder wires Services from configuration.
type Builder func(ctx context.Context, cfg *config.Config, req Requirements) (*Services, error)

var (
	configPath string
	dotEnvPath string
	verbose    bool

	cfg     *config.Config
	builder Builder
	// releaseBuilt closes the services setup built for the current command.
	releaseBuilt func() error

	ingestPipeline driving.IngestionPipeline
	searchService  driving.SearchService
	runHistory     driving.RunHistory
	indexAdmin     IndexAdmin
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Index Dropbox documents and search their contents",
	Long: `docsearch lists a Dropbox folder, extracts the text of every supported
document (plain text, PDF, DOCX, ODT, HTML), and indexes it in Elasticsearch
or an embedded Bleve index. Searches match documents whose content contains
the term and return a download link for each.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.docsearch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dotEnvPath, "env-file", "", "dotenv file (default ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBuilder registers the function that wires services on demand.
func SetBuilder(b Builder) {
	builder = b
}

// SetServices installs services directly, bypassing the Builder.
func SetServices(s *Services) {
	if s == nil {
		ingestPipeline, searchService, runHistory, indexAdmin = nil, nil, nil, nil
		return
	}
	ingestPipeline = s.Ingest
	searchService = s.Search
	runHistory = s.Runs
	indexAdmin = s.Index
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so a running ingestion finishes its report and servers drain.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runRoot(ctx)
}

// runRoot executes the root command and then closes whatever setup built.
// Cobra skips post-run hooks when a command fails, so the close happens here.
func runRoot(ctx context.Context) (err error) {
	defer func() {
		if cerr := releaseServices(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing services: %w", cerr))
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func releaseServices() error {
	release := releaseBuilt
	releaseBuilt = nil
	if release == nil {
		return nil
	}
	return release()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	loaded, err := config.Load(config.Options{Path: configPath, DotEnv: dotEnvPath})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cmd, loaded)
	cfg = loaded
	logger.Debug("config loaded from %s", cfg.Path)

	if cmd.Annotations[annotationNoServices] != "" || builder == nil {
		return nil
	}

	svc, err := builder(cmd.Context(), cfg, Requirements{
		Source: cmd.Annotations[annotationNeedsSource] != "",
	})
	if err != nil {
		return err
	}
	SetServices(svc)
	releaseBuilt = svc.Close
	return nil
}

// applyFlagOverrides lets command flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		c.Ingest.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("root") {
		c.Dropbox.Root, _ = flags.GetString("root")
	}
	if flags.Changed("recursive") {
		c.Dropbox.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("addr") {
		c.Server.Addr, _ = flags.GetString("addr")
	}
}

// currentConfig returns the loaded configuration, or defaults when a
// command runs without the root pre-run hook.
func currentConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

var (
	errSearchNotConfigured = errors.New("search service not configured")
	errIngestNotConfigured = errors.New("ingestion pipeline not configured")
	errIndexNotConfigured  = errors.New("search index not configured")
	errRunsNotConfigured   = errors.New("run history not configured")
)
