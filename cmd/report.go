package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yichend/billsync/internal/app"
	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/ui/views"
)

type reportFlags struct {
	Month string
	Type  string
}

func NewReportCmd(a *app.App) *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report [summary|breakdown|series]",
		Short: "Show monthly reports",
		Long: `Show aggregated views over the transaction set.

  summary    income/expense totals of one month (default)
  breakdown  per-category totals for one type and month
  series     income/expense bars for the last six months`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := "summary"
			if len(args) == 1 {
				mode = args[0]
			}
			return runReport(cmd, a, mode, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Month, "month", "m", "", "month to report on (YYYY-MM), defaults to the current month")
	cmd.Flags().StringVarP(&flags.Type, "type", "t", "expense", "type for the breakdown (expense|income)")

	return cmd
}

func runReport(cmd *cobra.Command, a *app.App, mode string, flags *reportFlags) error {
	if err := loadItems(cmd.Context(), a, false); err != nil {
		return err
	}

	ym := flags.Month
	if ym == "" {
		ym = time.Now().Format(model.MonthLayout)
	}
	if _, err := time.Parse(model.MonthLayout, ym); err != nil {
		return fmt.Errorf("invalid month %q, want YYYY-MM", ym)
	}

	switch mode {
	case "summary":
		views.RenderMonthSummary(ym, a.Engine.SummaryOfMonth(ym))
	case "breakdown":
		typ := model.Type(flags.Type)
		if typ != model.TypeExpense && typ != model.TypeIncome {
			return fmt.Errorf("unknown transaction type: %s", flags.Type)
		}
		views.RenderBreakdown(ym, typ, a.Engine.TypeBreakdownOfMonth(ym, typ))
	case "series":
		views.RenderMonthlySeries(a.Engine.MonthlySummarySeries())
	default:
		return fmt.Errorf("unknown report mode %q, want summary, breakdown or series", mode)
	}

	return nil
}
