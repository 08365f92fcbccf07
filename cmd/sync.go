package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
)

func NewSyncCmd(a *app.App) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize with the backend",
		Long: `Push pending records to the backend and pull the authoritative
transaction set. With --pending-only no full reload is performed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, a, pendingOnly)
		},
	}

	cmd.Flags().BoolVarP(&pendingOnly, "pending-only", "p", false, "only push pending records, skip the full reload")

	return cmd
}

func runSync(cmd *cobra.Command, a *app.App, pendingOnly bool) error {
	ctx := cmd.Context()

	if err := loadItems(ctx, a, false); err != nil {
		return err
	}

	before := a.Engine.PendingCount()
	if before > 0 {
		pterm.Info.Printf("%d record(s) pending sync\n", before)
	}

	a.Engine.SyncPending(ctx)

	if !pendingOnly {
		if err := loadItems(ctx, a, true); err != nil {
			return err
		}
	}

	after := a.Engine.PendingCount()
	switch {
	case after == 0 && before > 0:
		pterm.Success.Printf("All %d pending record(s) synced\n", before)
	case after == 0:
		pterm.Success.Println("Everything is in sync")
	default:
		pterm.Warning.Printf("%d record(s) still pending, will retry later\n", after)
	}

	return nil
}
