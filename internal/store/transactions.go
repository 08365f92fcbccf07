package store

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
)

// GetAll returns every cached transaction in insertion order.
func (s *Store) GetAll() ([]model.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, type, category, amount, note, date, synced
		FROM transactions
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	return txs, rows.Err()
}

func (s *Store) Insert(tx model.Transaction) error {
	_, err := s.db.Exec(`
		INSERT INTO transactions (id, type, category, amount, note, date, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, string(tx.Type), string(tx.Category), tx.Amount.String(), nullableNote(tx.Note), tx.Date, boolToInt(tx.Synced))
	if err != nil {
		var sqliteErr sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code == sqlite.ErrConstraint || sqliteErr.ExtendedCode == sqlite.ErrConstraintPrimaryKey {
				return fmt.Errorf("transaction %s: %w", tx.ID, ErrConstraintViolation)
			}
		}
		return fmt.Errorf("failed to insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) Update(tx model.Transaction) error {
	res, err := s.db.Exec(`
		UPDATE transactions
		SET type = ?, category = ?, amount = ?, note = ?, date = ?, synced = ?
		WHERE id = ?
	`, string(tx.Type), string(tx.Category), tx.Amount.String(), nullableNote(tx.Note), tx.Date, boolToInt(tx.Synced), tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", tx.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update transaction %s: %w", tx.ID, ErrRecordNotFound)
	}
	return nil
}

// Delete removes a row by id. Deleting an absent id is a no-op.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}

// MarkSynced flips the synced flag for id. Marking an absent id (for
// example a record deleted while its create call was in flight) is a
// harmless no-op.
func (s *Store) MarkSynced(id string) error {
	_, err := s.db.Exec(`UPDATE transactions SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark transaction %s synced: %w", id, err)
	}
	return nil
}

// ReplaceAll atomically swaps the entire cache for txs. On any failure
// the previous contents are kept.
func (s *Store) ReplaceAll(txs []model.Transaction) error {
	return s.ExecTx(func(r Repository) error {
		if err := r.Clear(); err != nil {
			return err
		}
		for _, tx := range txs {
			if err := r.Insert(tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	return nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		tx        model.Transaction
		txType    string
		category  string
		amountStr string
		note      sql.NullString
		synced    int
	)

	if err := rows.Scan(&tx.ID, &txType, &category, &amountStr, &note, &tx.Date, &synced); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q for transaction %s: %w", amountStr, tx.ID, err)
	}

	tx.Type = model.Type(txType)
	tx.Category = model.Category(category)
	tx.Amount = amount
	if note.Valid {
		tx.Note = note.String
	}
	tx.Synced = synced != 0

	return tx, nil
}

func nullableNote(note string) any {
	if note == "" {
		return nil
	}
	return note
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
