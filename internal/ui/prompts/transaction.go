package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
)

// PromptTransactionType prompts for expense or income.
func PromptTransactionType() (model.Type, error) {
	options := []string{"Expense", "Income"}

	selected, err := PromptSelect("Transaction type:", options, "Expense")
	if err != nil {
		return "", err
	}

	if selected == "Income" {
		return model.TypeIncome, nil
	}
	return model.TypeExpense, nil
}

// PromptCategory prompts for a category from the catalog.
func PromptCategory() (model.Category, error) {
	options := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		options = append(options, string(c))
	}

	selected, err := PromptSelect("Category:", options, string(model.CategoryOther))
	if err != nil {
		return "", err
	}

	return model.Category(selected), nil
}

// PromptAmount prompts for a non-negative decimal amount.
func PromptAmount() (decimal.Decimal, error) {
	raw, err := PromptInput("Amount:", "e.g. 128 or 12.50", "", validateAmount)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromString(raw)
}

// PromptTransactionDate prompts for the transaction date, defaulting to today.
func PromptTransactionDate() (string, error) {
	defaultDate := time.Now().Format(model.DateLayout)
	return PromptDate("Transaction date (YYYY-MM-DD):", defaultDate, "Press Enter for today")
}

// PromptNote prompts for an optional note.
func PromptNote() (string, error) {
	return PromptInput("Note (optional):", "", "", nil)
}

// PromptTransactionInput walks through the full add wizard.
func PromptTransactionInput() (model.TransactionInput, error) {
	var in model.TransactionInput
	var err error

	if in.Type, err = PromptTransactionType(); err != nil {
		return in, err
	}
	if in.Category, err = PromptCategory(); err != nil {
		return in, err
	}
	if in.Amount, err = PromptAmount(); err != nil {
		return in, err
	}
	if in.Date, err = PromptTransactionDate(); err != nil {
		return in, err
	}
	if in.Note, err = PromptNote(); err != nil {
		return in, err
	}

	return in, nil
}

func validateAmount(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount: %s", s)
	}
	if d.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}
