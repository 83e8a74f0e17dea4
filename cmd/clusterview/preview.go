package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"clusterview/internal/domain"
	"clusterview/internal/logging"
	"clusterview/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "List the columns of a CSV file as the clustering service sees them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := newService(logging.NewStderr(cfg.Log.Level))
		return runPreview(cmd.Context(), cmd.OutOrStdout(), svc, args[0])
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(ctx context.Context, out io.Writer, backend domain.Backend, path string) error {
	u, err := session.OpenFile(path)
	if err != nil {
		return err
	}
	if !session.IsCSV(u) {
		return session.ErrNotCSV
	}
	cols, err := backend.Preview(ctx, u)
	if err != nil {
		return fmt.Errorf("preview %s: %w", u.Name, err)
	}
	fmt.Fprintln(out, columnTable(cols))
	numeric := 0
	for _, c := range cols {
		if c.IsNumeric() {
			numeric++
		}
	}
	if numeric == 0 {
		fmt.Fprintln(out, session.MsgNoNumeric)
	}
	return nil
}

func columnTable(cols []domain.Column) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cell }).
		Headers("COLUMN", "TYPE", "SUGGESTED")
	for _, c := range cols {
		mark := ""
		if c.Suggested {
			mark = "*"
		}
		t.Row(c.Name, c.Type, mark)
	}
	return t.Render()
}

// stderrNotifier prints blocking notices for the headless commands.
type stderrNotifier struct{ w io.Writer }

func (n stderrNotifier) Alert(msg string) { fmt.Fprintln(n.w, "✗", msg) }

func newNotifier() stderrNotifier { return stderrNotifier{w: os.Stderr} }
