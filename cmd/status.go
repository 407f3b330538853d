package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/ctdash/internal/daemon"
	"github.com/joescharf/ctdash/internal/output"
	"github.com/joescharf/ctdash/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a one-shot orchestrator snapshot",
	Long: `Show the same snapshot the dashboard renders, once, in the
terminal: process liveness, thread counts, pending events, and the
thread table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	paths := resolvePaths()
	s := store.New(paths.DB())
	ctx := context.Background()

	_, orchestratorUp := daemon.NewPIDFile(paths.OrchestratorPID()).IsRunning()
	_, apiUp := daemon.NewPIDFile(paths.APIServerPID()).IsRunning()
	counts := s.ThreadCounts(ctx)
	pending := s.CountPendingEvents(ctx)

	ui.Info("Data directory: %s", paths.Root())
	fmt.Fprintln(ui.Out)
	fmt.Fprintf(ui.Out, "  orchestrator  %s\n", output.RunningColor(orchestratorUp))
	fmt.Fprintf(ui.Out, "  api server    %s\n", output.RunningColor(apiUp))
	fmt.Fprintf(ui.Out, "  threads       %d total (%d running, %d ready)\n",
		counts.Total, counts.Running, counts.Ready)
	fmt.Fprintf(ui.Out, "  events        %d pending\n", pending)

	threads := s.ListThreads(ctx)
	if len(threads) == 0 {
		return nil
	}
	fmt.Fprintln(ui.Out)

	table := ui.Table([]string{"ID", "Name", "Status", "Phase", "Updated"})
	for _, t := range threads {
		table.Append([]string{
			t.ID,
			output.Cyan(t.Name),
			output.StatusColor(t.Status),
			t.Phase,
			t.UpdatedAt,
		})
	}
	table.Render()
	return nil
}
