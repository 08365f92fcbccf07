package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/ui/prompts"
	"github.com/yichend/billsync/internal/utils"
)

type addFlags struct {
	Type     string
	Category string
	Amount   string
	Date     string
	Note     string
}

type addRunner struct {
	app   *app.App
	flags *addFlags
	cmd   *cobra.Command
}

func NewAddCmd(a *app.App) *cobra.Command {
	flags := &addFlags{}

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"a"},
		Short:   "Record a new transaction",
		Long: `Record a new income or expense transaction.

The record is stored locally right away and pushed to the backend in the
background; without connectivity it stays pending and is retried on the
next add or sync.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := &addRunner{app: a, flags: flags, cmd: cmd}
			return runner.Run()
		},
	}

	cmd.Flags().StringVarP(&flags.Type, "type", "t", "expense", "transaction type (expense|income)")
	cmd.Flags().StringVarP(&flags.Category, "category", "g", "", "category label")
	cmd.Flags().StringVarP(&flags.Amount, "amount", "a", "", "amount, e.g. 12.50")
	cmd.Flags().StringVarP(&flags.Date, "date", "d", "", "date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVarP(&flags.Note, "note", "n", "", "optional note")

	return cmd
}

func (r *addRunner) Run() error {
	ctx := r.cmd.Context()

	if err := loadItems(ctx, r.app, false); err != nil {
		return err
	}

	in, err := r.buildInput()
	if err != nil {
		return err
	}

	tx, err := r.app.Engine.Add(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to add transaction: %w", err)
	}

	if tx.Synced {
		pterm.Success.Printf("Recorded %s %s (%s), synced\n", tx.Type, utils.FormatCurrency(tx.Amount), tx.Category)
	} else {
		pterm.Success.Printf("Recorded %s %s (%s), pending sync\n", tx.Type, utils.FormatCurrency(tx.Amount), tx.Category)
	}

	return nil
}

// buildInput uses flags when an amount was given, otherwise walks the
// interactive wizard.
func (r *addRunner) buildInput() (model.TransactionInput, error) {
	if r.flags.Amount == "" {
		return prompts.PromptTransactionInput()
	}

	amount, err := decimal.NewFromString(r.flags.Amount)
	if err != nil {
		return model.TransactionInput{}, fmt.Errorf("invalid amount %q", r.flags.Amount)
	}

	date := r.flags.Date
	if date == "" {
		date = time.Now().Format(model.DateLayout)
	}

	category := model.Category(r.flags.Category)
	if r.flags.Category == "" {
		category = model.CategoryOther
	}

	return model.TransactionInput{
		Type:     model.Type(r.flags.Type),
		Category: category,
		Amount:   amount,
		Date:     date,
		Note:     r.flags.Note,
	}, nil
}
