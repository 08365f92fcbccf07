package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
)

// exportRecord is the export file shape: the wire fields plus the id,
// so a later import can be traced back, but never the synced flag.
type exportRecord struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Note     string `json:"note,omitempty"`
	Date     string `json:"date"`
}

func NewExportCmd(a *app.App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all transactions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, a, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, a *app.App, output string) error {
	if err := loadItems(cmd.Context(), a, false); err != nil {
		return err
	}

	items := a.Engine.Items()
	records := make([]exportRecord, 0, len(items))
	for _, tx := range items {
		records = append(records, exportRecord{
			ID:       tx.ID,
			Type:     string(tx.Type),
			Category: string(tx.Category),
			Amount:   tx.Amount.String(),
			Note:     tx.Note,
			Date:     tx.Date,
		})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transactions: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	pterm.Success.Printf("Exported %d transaction(s) to %s\n", len(records), output)
	return nil
}
