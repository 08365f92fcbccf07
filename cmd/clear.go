package cmd

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/errhandler"
)

func NewClearCmd(a *app.App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe the local cache",
		Long: `Wipe all locally cached transactions. Remote data is untouched and
comes back on the next sync; pending (unsynced) records are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, a, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func runClear(cmd *cobra.Command, a *app.App, force bool) error {
	if err := loadItems(cmd.Context(), a, false); err != nil {
		return err
	}
	pending := a.Engine.PendingCount()

	if !force {
		message := "Wipe the local cache?"
		if pending > 0 {
			message = pterm.Sprintf("Wipe the local cache? %d pending record(s) will be lost", pending)
		}

		confirmed := false
		prompt := &survey.Confirm{Message: message, Default: false}
		if err := survey.AskOne(prompt, &confirmed, surveyOpts...); err != nil {
			errhandler.HandleError(err)
			return nil
		}
		if !confirmed {
			pterm.Info.Println("Clear cancelled")
			return nil
		}
	}

	if err := a.Engine.ClearLocal(); err != nil {
		return err
	}

	pterm.Success.Println("Local cache cleared")
	return nil
}
