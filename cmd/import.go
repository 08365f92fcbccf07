package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/model"
)

func NewImportCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a JSON export",
		Long: `Import transactions from a JSON array as produced by export.

Each record goes through the normal add pipeline: it gets a fresh id, is
stored locally first and synced to the backend when possible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, args[0])
		},
	}

	return cmd
}

func runImport(cmd *cobra.Command, a *app.App, path string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := loadItems(ctx, a, false); err != nil {
		return err
	}

	imported := 0
	for i, rec := range records {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			pterm.Warning.Printf("Skipping record %d: invalid amount %q\n", i+1, rec.Amount)
			continue
		}

		_, err = a.Engine.Add(ctx, model.TransactionInput{
			Type:     model.Type(rec.Type),
			Category: model.Category(rec.Category),
			Amount:   amount,
			Note:     rec.Note,
			Date:     rec.Date,
		})
		if err != nil {
			pterm.Warning.Printf("Skipping record %d: %v\n", i+1, err)
			continue
		}
		imported++
	}

	pterm.Success.Printf("Imported %d of %d record(s)\n", imported, len(records))
	return nil
}
