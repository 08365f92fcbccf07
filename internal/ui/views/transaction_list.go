package views

import (
	"github.com/pterm/pterm"

	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/utils"
)

type TransactionListView struct{}

func NewTransactionListView() *TransactionListView {
	return &TransactionListView{}
}

func (v *TransactionListView) Render(items []model.Transaction) error {
	if len(items) == 0 {
		pterm.Warning.Println("No transactions found")
		return nil
	}

	tableData := pterm.TableData{
		{"ID", "Date", "Type", "Category", "Amount", "Note", "Synced"},
	}

	for _, tx := range items {
		amount := utils.FormatCurrency(tx.Amount)

		var coloredType, coloredAmount string
		switch tx.Type {
		case model.TypeExpense:
			coloredType = pterm.Red("expense")
			coloredAmount = pterm.Red(amount)
		case model.TypeIncome:
			coloredType = pterm.Green("income")
			coloredAmount = pterm.Green(amount)
		default:
			coloredType = string(tx.Type)
			coloredAmount = amount
		}

		synced := pterm.Green("yes")
		if !tx.Synced {
			synced = pterm.Yellow("pending")
		}

		tableData = append(tableData, []string{
			tx.ID,
			tx.Date,
			coloredType,
			string(tx.Category),
			coloredAmount,
			tx.Note,
			synced,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
