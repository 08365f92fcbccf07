package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/model"
)

type editFlags struct {
	Type     string
	Category string
	Amount   string
	Date     string
	Note     string
}

type editRunner struct {
	app   *app.App
	flags *editFlags
	cmd   *cobra.Command
}

func NewEditCmd(a *app.App) *cobra.Command {
	flags := &editFlags{}

	cmd := &cobra.Command{
		Use:   "edit <transaction-id>",
		Short: "Edit a transaction",
		Long: `Edit fields of an existing transaction.

The local record changes immediately; the backend is updated best-effort
and a failed remote update is not retried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &editRunner{app: a, flags: flags, cmd: cmd}
			return runner.Run(args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.Type, "type", "t", "", "new type (expense|income)")
	cmd.Flags().StringVarP(&flags.Category, "category", "g", "", "new category label")
	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&flags.Date, "date", "d", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.Note, "note", "n", "", "new note")

	return cmd
}

func (r *editRunner) Run(id string) error {
	ctx := r.cmd.Context()

	if err := loadItems(ctx, r.app, false); err != nil {
		return err
	}

	patch, err := r.buildPatch()
	if err != nil {
		return err
	}

	found := false
	for _, tx := range r.app.Engine.Items() {
		if tx.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("transaction %s not found", id)
	}

	r.app.Engine.Update(ctx, id, patch)
	pterm.Success.Printf("Updated transaction %s\n", id)

	return nil
}

func (r *editRunner) buildPatch() (model.TransactionPatch, error) {
	var patch model.TransactionPatch

	if r.flags.Type != "" {
		t := model.Type(r.flags.Type)
		if t != model.TypeExpense && t != model.TypeIncome {
			return patch, fmt.Errorf("unknown transaction type: %s", r.flags.Type)
		}
		patch.Type = &t
	}
	if r.flags.Category != "" {
		c := model.Category(r.flags.Category)
		if !c.Valid() {
			return patch, fmt.Errorf("unknown category: %s", r.flags.Category)
		}
		patch.Category = &c
	}
	if r.flags.Amount != "" {
		d, err := decimal.NewFromString(r.flags.Amount)
		if err != nil || d.IsNegative() {
			return patch, fmt.Errorf("invalid amount %q", r.flags.Amount)
		}
		patch.Amount = &d
	}
	if r.flags.Date != "" {
		if _, err := model.ParseDate(r.flags.Date); err != nil {
			return patch, err
		}
		patch.Date = &r.flags.Date
	}
	if r.cmd.Flags().Changed("note") {
		patch.Note = &r.flags.Note
	}

	if patch.Type == nil && patch.Category == nil && patch.Amount == nil && patch.Date == nil && patch.Note == nil {
		return patch, fmt.Errorf("nothing to change, pass at least one field flag")
	}

	return patch, nil
}
