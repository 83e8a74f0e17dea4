package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"clusterview/internal/logging"
	"clusterview/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [FILE]",
	Short: "Start the interactive terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(_ *cobra.Command, args []string) error {
	logger := logging.New(os.Stderr, cfg.Log.Level)
	if cfg.Log.File != "" {
		f, err := tea.LogToFileWith(cfg.Log.File, "clusterview", logger)
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		logger = logging.NewDiscard()
	}

	svc, _ := newService(logger)
	opts := tui.Options{
		KMin: cfg.Analysis.KMin,
		KMax: cfg.Analysis.KMax,
		K:    cfg.Analysis.DefaultK,
	}
	if len(args) == 1 {
		opts.InitialFile = args[0]
	}
	if wd, err := os.Getwd(); err == nil {
		opts.StartDir = wd
	}

	logger.Info("", "starting ui, service %s", cfg.Server.BaseURL)
	if _, err := tea.NewProgram(tui.New(svc, opts, logger), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
