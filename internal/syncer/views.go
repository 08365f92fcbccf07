package syncer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
)

// Summary holds the income and expense totals of one calendar month.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthPoint is one entry of the monthly series.
type MonthPoint struct {
	Month   string // short label, e.g. "Feb"
	YM      string // YYYY-MM
	Income  decimal.Decimal
	Expense decimal.Decimal
}

const seriesMonths = 6

// SummaryOfMonth sums income and expense for the given YYYY-MM.
func (e *Engine) SummaryOfMonth(ym string) Summary {
	return SummarizeMonth(e.Items(), ym)
}

// TypeBreakdownOfMonth sums amounts per category for one type and
// month. Every catalog category is present in the result, zero-valued
// when unused.
func (e *Engine) TypeBreakdownOfMonth(ym string, typ model.Type) map[model.Category]decimal.Decimal {
	return BreakdownOfMonth(e.Items(), ym, typ)
}

// MonthlySummarySeries returns income/expense totals for the most
// recent six calendar months, oldest first, months with no activity
// included.
func (e *Engine) MonthlySummarySeries() []MonthPoint {
	return MonthlySeries(e.Items(), e.now(), seriesMonths)
}

func SummarizeMonth(items []model.Transaction, ym string) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range items {
		if t.Month() != ym {
			continue
		}
		if t.Type == model.TypeIncome {
			s.Income = s.Income.Add(t.Amount)
		} else {
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	return s
}

func BreakdownOfMonth(items []model.Transaction, ym string, typ model.Type) map[model.Category]decimal.Decimal {
	acc := make(map[model.Category]decimal.Decimal, len(model.Categories))
	for _, c := range model.Categories {
		acc[c] = decimal.Zero
	}

	for _, t := range items {
		if t.Type != typ || t.Month() != ym {
			continue
		}
		acc[t.Category] = acc[t.Category].Add(t.Amount)
	}

	return acc
}

func MonthlySeries(items []model.Transaction, now time.Time, months int) []MonthPoint {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]MonthPoint, 0, months)
	index := make(map[string]int, months)
	for i := months - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		ym := m.Format(model.MonthLayout)
		index[ym] = len(points)
		points = append(points, MonthPoint{
			Month:   m.Format("Jan"),
			YM:      ym,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		})
	}

	for _, t := range items {
		i, ok := index[t.Month()]
		if !ok {
			continue
		}
		if t.Type == model.TypeIncome {
			points[i].Income = points[i].Income.Add(t.Amount)
		} else {
			points[i].Expense = points[i].Expense.Add(t.Amount)
		}
	}

	return points
}
