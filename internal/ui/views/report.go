package views

import (
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/syncer"
	"github.com/yichend/billsync/internal/utils"
)

// RenderMonthSummary shows the income/expense totals of one month.
func RenderMonthSummary(ym string, s syncer.Summary) {
	pterm.DefaultSection.Printf("Summary for %s", ym)

	tableData := pterm.TableData{
		{"", "Amount"},
		{pterm.Green("Income"), utils.FormatCurrency(s.Income)},
		{pterm.Red("Expense"), utils.FormatCurrency(s.Expense)},
		{"Balance", utils.FormatCurrency(s.Income.Sub(s.Expense))},
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// RenderBreakdown shows per-category totals for one type and month.
// Zero rows are kept so the catalog stays visible.
func RenderBreakdown(ym string, typ model.Type, breakdown map[model.Category]decimal.Decimal) {
	pterm.DefaultSection.Printf("%s by category for %s", typ, ym)

	tableData := pterm.TableData{
		{"Category", "Icon", "Amount"},
	}

	for _, c := range model.Categories {
		amount := breakdown[c]
		row := []string{string(c), model.CategoryIcons[c], utils.FormatCurrency(amount)}
		if amount.IsZero() {
			row[2] = pterm.Gray(row[2])
		}
		tableData = append(tableData, row)
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// RenderMonthlySeries shows the six-month series as paired bars.
func RenderMonthlySeries(points []syncer.MonthPoint) {
	pterm.DefaultSection.Println("Last six months")

	var bars []pterm.Bar
	for _, p := range points {
		bars = append(bars,
			pterm.Bar{
				Label: p.Month + " in",
				Value: int(p.Income.IntPart()),
				Style: pterm.NewStyle(pterm.FgGreen),
			},
			pterm.Bar{
				Label: p.Month + " out",
				Value: int(p.Expense.IntPart()),
				Style: pterm.NewStyle(pterm.FgRed),
			},
		)
	}

	if err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Render(); err != nil {
		pterm.Error.Println(err)
	}
}
