package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driven/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
	Long: `Configuration is read from the TOML file, then a .env file, then the
environment; later sources win. Secrets are masked when shown.`,
	Annotations: map[string]string{annotationNoServices: "true"},
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the config file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoServices: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(currentConfig().Path)
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE:        runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Writes a dotted key to the TOML file, for example:

  docsearch config set index.backend bleve
  docsearch config set ingest.workers 8
  docsearch config set ingest.fetch_timeout 45s`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationNoServices: "true"},
	RunE:        runConfigSet,
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	c := currentConfig().Redacted()

	rows := [][2]string{
		{"config", c.Path},
		{"dropbox.access_token", c.Dropbox.AccessToken},
		{"dropbox.refresh_token", c.Dropbox.RefreshToken},
		{"dropbox.app_key", c.Dropbox.AppKey},
		{"dropbox.app_secret", c.Dropbox.AppSecret},
		{"dropbox.root", c.Dropbox.Root},
		{"dropbox.recursive", fmt.Sprint(c.Dropbox.Recursive)},
		{"index.backend", c.Index.Backend},
		{"index.addresses", strings.Join(c.Index.Addresses, ",")},
		{"index.api_key", c.Index.APIKey},
		{"index.name", c.Index.Name},
		{"index.bleve_path", c.Index.BlevePath},
		{"index.page_size", fmt.Sprint(c.Index.PageSize)},
		{"ingest.workers", fmt.Sprint(c.Ingest.Workers)},
		{"ingest.retries", fmt.Sprint(c.Ingest.Retries)},
		{"ingest.retry_backoff", c.Ingest.RetryBackoff.String()},
		{"ingest.fetch_timeout", c.Ingest.FetchTimeout.String()},
		{"ingest.index_timeout", c.Ingest.IndexTimeout.String()},
		{"ingest.run_timeout", c.Ingest.RunTimeout.String()},
		{"url.base", c.URL.Base},
		{"url.suffix", c.URL.Suffix},
		{"server.addr", c.Server.Addr},
		{"data_dir", c.DataDir},
	}

	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "-"
		}
		cmd.Printf("%-22s %s\n", row[0], value)
	}

	if err := currentConfig().Validate(); err != nil {
		cmd.Println()
		cmd.Println("Problems:")
		for _, line := range strings.Split(err.Error(), "\n") {
			cmd.Printf("  %s\n", line)
		}
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	store, err := config.NewStore(configPath)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	if err := store.Set(key, config.ParseValue(raw)); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("Set %s in %s\n", key, store.Path())
	return nil
}
