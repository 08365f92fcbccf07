package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/store"
)

func openTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "billsync.db")
	s, err := store.NewStore(dbPath, os.DirFS("../.."))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s, dbPath
}

func sampleTx(id string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Type:     model.TypeExpense,
		Category: model.CategoryDining,
		Amount:   decimal.RequireFromString("12.50"),
		Note:     "lunch",
		Date:     "2024-05-01 12:30:00",
		Synced:   false,
	}
}

func TestInsertSurvivesReopen(t *testing.T) {
	s, dbPath := openTestStore(t)

	want := sampleTx("1714550000000")
	if err := s.Insert(want); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// simulated process restart
	reopened, err := store.NewStore(dbPath, os.DirFS("../.."))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	all, err := reopened.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d rows after reopen, want 1", len(all))
	}

	got := all[0]
	if got.ID != want.ID || got.Type != want.Type || got.Category != want.Category ||
		!got.Amount.Equal(want.Amount) || got.Note != want.Note || got.Date != want.Date {
		t.Errorf("reopened row = %+v, want %+v", got, want)
	}
	if got.Synced {
		t.Error("synced flag must persist as false")
	}
}

func TestGetAllInsertionOrder(t *testing.T) {
	s, _ := openTestStore(t)

	ids := []string{"3", "1", "2"}
	for _, id := range ids {
		if err := s.Insert(sampleTx(id)); err != nil {
			t.Fatalf("Insert(%s) error = %v", id, err)
		}
	}

	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	for i, id := range ids {
		if all[i].ID != id {
			t.Errorf("row %d id = %s, want insertion order %v", i, all[i].ID, ids)
		}
	}
}

func TestUpdate(t *testing.T) {
	s, _ := openTestStore(t)

	tx := sampleTx("1")
	if err := s.Insert(tx); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	tx.Amount = decimal.RequireFromString("99.99")
	tx.Note = ""
	tx.Synced = true
	if err := s.Update(tx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	all, _ := s.GetAll()
	got := all[0]
	if !got.Amount.Equal(tx.Amount) || got.Note != "" || !got.Synced {
		t.Errorf("updated row = %+v, want %+v", got, tx)
	}
}

func TestInsertDuplicateID(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Insert(sampleTx("1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	err := s.Insert(sampleTx("1"))
	if !errors.Is(err, store.ErrConstraintViolation) {
		t.Errorf("Insert() duplicate error = %v, want ErrConstraintViolation", err)
	}
}

func TestUpdateAbsent(t *testing.T) {
	s, _ := openTestStore(t)

	err := s.Update(sampleTx("missing"))
	if !errors.Is(err, store.ErrRecordNotFound) {
		t.Errorf("Update() on absent id error = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Insert(sampleTx("1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := s.Delete("1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("does-not-exist"); err != nil {
		t.Errorf("Delete() on absent id should be a no-op, got %v", err)
	}

	all, _ := s.GetAll()
	if len(all) != 0 {
		t.Errorf("got %d rows, want 0", len(all))
	}
}

func TestMarkSynced(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Insert(sampleTx("1")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := s.MarkSynced("1"); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	if err := s.MarkSynced("gone"); err != nil {
		t.Errorf("MarkSynced() on absent id should be a no-op, got %v", err)
	}

	all, _ := s.GetAll()
	if !all[0].Synced {
		t.Error("row not marked synced")
	}
}

func TestReplaceAll(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Insert(sampleTx("old")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	fresh := []model.Transaction{sampleTx("a"), sampleTx("b")}
	fresh[0].Synced = true
	fresh[1].Synced = true

	if err := s.ReplaceAll(fresh); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	all, _ := s.GetAll()
	if len(all) != 2 {
		t.Fatalf("got %d rows, want 2", len(all))
	}
	if all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("rows = %v, want the replacement set", []string{all[0].ID, all[1].ID})
	}
}

func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Insert(sampleTx("keep")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	// the duplicate primary key makes the second insert fail midway
	bad := []model.Transaction{sampleTx("x"), sampleTx("x")}
	if err := s.ReplaceAll(bad); err == nil {
		t.Fatal("ReplaceAll() with duplicate ids should fail")
	}

	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != "keep" {
		t.Errorf("rows after failed replace = %+v, want the pre-replace contents", all)
	}
}

func TestClear(t *testing.T) {
	s, _ := openTestStore(t)

	for _, id := range []string{"1", "2"} {
		if err := s.Insert(sampleTx(id)); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	all, _ := s.GetAll()
	if len(all) != 0 {
		t.Errorf("got %d rows after clear, want 0", len(all))
	}
}
