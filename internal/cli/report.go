package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/taskboard/internal/cache"
	"github.com/tgienger/taskboard/internal/report"
)

// snapshot fetches a fresh snapshot with the stored session
func (app *App) snapshot(ctx context.Context) (cache.Snapshot, error) {
	rt, err := app.open()
	if err != nil {
		return cache.Snapshot{}, err
	}
	defer rt.Close()

	if !rt.Session.Authenticated() {
		return cache.Snapshot{}, errNotLoggedIn
	}
	snap, err := rt.Cache.Refresh(ctx)
	if err != nil {
		return cache.Snapshot{}, fmt.Errorf("load data: %w", err)
	}
	return snap, nil
}

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "report tasks|projects",
		Short:     "Print a task count report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(report.KindTasks), string(report.KindProjects)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			snap, err := app.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s", report.Format(kind, report.Build(kind, snap)))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = app.Config.Export.File
			}
			snap, err := app.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.ExportFile(output, snap); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(snap.Tasks), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default export.file)")
	return cmd
}
