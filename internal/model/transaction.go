package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Type string

const (
	TypeExpense Type = "expense"
	TypeIncome  Type = "income"
)

const (
	// DateTimeLayout is the canonical timestamp layout of the wire format.
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
)

// Transaction is the sole entity of the system. Synced is local-only
// metadata and never part of the wire representation.
type Transaction struct {
	ID       string          `json:"id"`
	Type     Type            `json:"type"`
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
	Date     string          `json:"date"`
	Synced   bool            `json:"-"`
}

// TransactionInput is the caller-supplied part of a new transaction;
// id and synced are assigned by the sync engine.
type TransactionInput struct {
	Type     Type
	Category Category
	Amount   decimal.Decimal
	Note     string
	Date     string
}

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Type     *Type            `json:"type,omitempty"`
	Category *Category        `json:"category,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Note     *string          `json:"note,omitempty"`
	Date     *string          `json:"date,omitempty"`
}

func (p TransactionPatch) Apply(tx Transaction) Transaction {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Note != nil {
		tx.Note = *p.Note
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	return tx
}

func (in TransactionInput) Validate() error {
	if in.Type != TypeExpense && in.Type != TypeIncome {
		return fmt.Errorf("unknown transaction type: %s", in.Type)
	}
	if !in.Category.Valid() {
		return fmt.Errorf("unknown category: %s", in.Category)
	}
	if in.Amount.IsNegative() {
		return fmt.Errorf("amount must not be negative: %s", in.Amount)
	}
	if _, err := ParseDate(in.Date); err != nil {
		return err
	}
	return nil
}

// ParseDate accepts both the date-time and date-only forms of the wire format.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want %s or %s", s, DateLayout, DateTimeLayout)
}

// Month returns the transaction date formatted as YYYY-MM, or "" when
// the date does not parse.
func (t Transaction) Month() string {
	d, err := ParseDate(t.Date)
	if err != nil {
		return ""
	}
	return d.Format(MonthLayout)
}

// Day returns the transaction date formatted as YYYY-MM-DD, or "" when
// the date does not parse.
func (t Transaction) Day() string {
	d, err := ParseDate(t.Date)
	if err != nil {
		return ""
	}
	return d.Format(DateLayout)
}
