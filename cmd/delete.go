package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/errhandler"
	"github.com/yichend/billsync/internal/utils"
)

// surveyOpts contains custom options for all survey prompts
var surveyOpts = []survey.AskOpt{
	survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Text = "-"
	}),
}

func NewDeleteCmd(a *app.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <transaction-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Long: `Delete a transaction from the local cache and, best-effort, from the
backend. The local deletion cannot be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, a, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, a *app.App, id string, force bool) error {
	ctx := cmd.Context()

	if err := loadItems(ctx, a, false); err != nil {
		return err
	}

	var target string
	for _, tx := range a.Engine.Items() {
		if tx.ID == id {
			target = fmt.Sprintf("%s %s %s (%s)", tx.Date, tx.Type, utils.FormatCurrency(tx.Amount), tx.Category)
			break
		}
	}
	if target == "" {
		return fmt.Errorf("transaction %s not found", id)
	}

	if !force {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete %s?", target),
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirmed, surveyOpts...); err != nil {
			errhandler.HandleError(err)
			return nil
		}
		if !confirmed {
			pterm.Info.Println("Deletion cancelled")
			return nil
		}
	}

	a.Engine.Remove(ctx, id)
	pterm.Success.Printf("Deleted transaction %s\n", id)

	return nil
}
