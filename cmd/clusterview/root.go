package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"clusterview/internal/clusterapi"
	"clusterview/internal/config"
	"clusterview/internal/logging"
	"clusterview/internal/service"
	"clusterview/internal/store/memory"
)

// historyLimit caps how many analyses one process keeps for the viewer.
const historyLimit = 50

var (
	cfgFile            string
	flagServer         string
	debug              bool
	flagHTTPTimeoutSec int

	cfg     *config.AppConfig
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "clusterview [FILE]",
	Short: "Explore k-means clusters of a CSV file",
	Long: `clusterview uploads a CSV file to a clustering service, lets you pick the
numeric features and the number of clusters, and shows the clusters as a
scatter plot with per-cluster summaries.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runUI,
	SilenceUsage:      true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.config/clusterview/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "clustering service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		cfgPath = cfgFile
	} else {
		cfg, cfgPath, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("server") && flagServer != "" {
		cfg.Server.BaseURL = flagServer
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.Server.TimeoutSecs = flagHTTPTimeoutSec
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	return nil
}

// newService wires the API client, the result history and logging.
func newService(logger *logging.Logger) (*service.AnalysisServiceImpl, *memory.Storage) {
	client := clusterapi.NewClient(clusterapi.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second,
	})
	store := memory.NewStorage(historyLimit)
	return service.NewAnalysisService(client, store, logger), store
}
