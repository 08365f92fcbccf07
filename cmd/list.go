package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/ui/views"
)

type listFlags struct {
	Date  string
	Month string
}

type listRunner struct {
	app   *app.App
	flags *listFlags
	cmd   *cobra.Command
}

func NewListCmd(a *app.App) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "l"},
		Short:   "List transactions",
		Long: `List transactions from the local cache.

Filter to a single day with --date or a calendar month with --month.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &listRunner{app: a, flags: flags, cmd: cmd}
			return runner.Run()
		},
	}

	cmd.Flags().StringVarP(&flags.Date, "date", "d", "", "show a single day (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.Month, "month", "m", "", "show a calendar month (YYYY-MM)")

	return cmd
}

func (r *listRunner) Run() error {
	if err := loadItems(r.cmd.Context(), r.app, false); err != nil {
		return err
	}

	var items []model.Transaction

	switch {
	case r.flags.Date != "":
		items = r.app.Engine.ByDate(r.flags.Date)
		pterm.Info.Printf("Transactions on %s\n\n", r.flags.Date)
	case r.flags.Month != "":
		for _, tx := range r.app.Engine.Items() {
			if tx.Month() == r.flags.Month {
				items = append(items, tx)
			}
		}
		pterm.Info.Printf("Transactions in %s\n\n", r.flags.Month)
	default:
		items = r.app.Engine.Items()
	}

	return views.NewTransactionListView().Render(items)
}
