package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
)

type fakeRepo struct {
	mu    sync.Mutex
	rows  map[string]model.Transaction
	order []string

	insertErr  error
	replaceErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string]model.Transaction)}
}

func (r *fakeRepo) GetAll() ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Transaction, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func (r *fakeRepo) Insert(tx model.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[tx.ID]; !ok {
		r.order = append(r.order, tx.ID)
	}
	r.rows[tx.ID] = tx
	return nil
}

func (r *fakeRepo) Update(tx model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[tx.ID]; ok {
		r.rows[tx.ID] = tx
	}
	return nil
}

func (r *fakeRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; ok {
		delete(r.rows, id)
		for i, o := range r.order {
			if o == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (r *fakeRepo) MarkSynced(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx, ok := r.rows[id]; ok {
		tx.Synced = true
		r.rows[id] = tx
	}
	return nil
}

func (r *fakeRepo) ReplaceAll(txs []model.Transaction) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[string]model.Transaction)
	r.order = nil
	for _, tx := range txs {
		r.order = append(r.order, tx.ID)
		r.rows[tx.ID] = tx
	}
	return nil
}

func (r *fakeRepo) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = make(map[string]model.Transaction)
	r.order = nil
	return nil
}

func (r *fakeRepo) Close() error { return nil }

func (r *fakeRepo) get(id string) (model.Transaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.rows[id]
	return tx, ok
}

type fakeAPI struct {
	mu sync.Mutex

	fetched   []model.Transaction
	fetchErr  error
	fetchCnt  int
	createErr func(tx model.Transaction) error
	creates   []string
	updates   []string
	updateErr error
	deletes   []string
	deleteErr error

	createStarted chan string
	createGate    chan struct{}
}

func (a *fakeAPI) FetchTransactions(ctx context.Context) ([]model.Transaction, error) {
	a.mu.Lock()
	a.fetchCnt++
	a.mu.Unlock()
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.fetched, nil
}

func (a *fakeAPI) CreateTransaction(ctx context.Context, tx model.Transaction) error {
	a.mu.Lock()
	a.creates = append(a.creates, tx.ID)
	a.mu.Unlock()

	if a.createStarted != nil {
		a.createStarted <- tx.ID
	}
	if a.createGate != nil {
		<-a.createGate
	}
	if a.createErr != nil {
		return a.createErr(tx)
	}
	return nil
}

func (a *fakeAPI) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error {
	a.mu.Lock()
	a.updates = append(a.updates, id)
	a.mu.Unlock()
	return a.updateErr
}

func (a *fakeAPI) DeleteTransaction(ctx context.Context, id string) error {
	a.mu.Lock()
	a.deletes = append(a.deletes, id)
	a.mu.Unlock()
	return a.deleteErr
}

func (a *fakeAPI) createCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.creates)
}

type fakeCreds struct{ has bool }

func (c fakeCreds) Has() bool { return c.has }

func newTestEngine(repo *fakeRepo, api *fakeAPI, hasToken, online bool) *Engine {
	return New(repo, api, fakeCreds{has: hasToken}, func() bool { return online }, zerolog.Nop())
}

func testInput(amount string, date string) model.TransactionInput {
	return model.TransactionInput{
		Type:     model.TypeExpense,
		Category: model.CategoryDining,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
	}
}

func TestAddDurableBeforeNetwork(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{createErr: func(model.Transaction) error { return errors.New("network down") }}
	e := newTestEngine(repo, api, true, false)

	tx, err := e.Add(context.Background(), testInput("42.50", "2024-05-01"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	// simulated restart: a fresh engine reading the same repo
	restarted := newTestEngine(repo, &fakeAPI{fetchErr: errors.New("still down")}, true, false)
	if err := restarted.Load(context.Background(), true); err != nil {
		t.Fatalf("Load() after restart error = %v", err)
	}

	items := restarted.Items()
	if len(items) != 1 {
		t.Fatalf("got %d items after restart, want 1", len(items))
	}
	got := items[0]
	if got.ID != tx.ID || !got.Amount.Equal(tx.Amount) || got.Category != tx.Category {
		t.Errorf("restarted record = %+v, want %+v", got, tx)
	}
	if got.Synced {
		t.Error("record should still be pending after failed remote create")
	}
}

func TestAddMarksSyncedOnSuccess(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{}
	e := newTestEngine(repo, api, true, true)

	tx, err := e.Add(context.Background(), testInput("10", "2024-05-01"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !tx.Synced {
		t.Error("returned transaction should be synced")
	}

	stored, ok := repo.get(tx.ID)
	if !ok {
		t.Fatal("record missing from repo")
	}
	if !stored.Synced {
		t.Error("repo record should be marked synced")
	}
	if got := e.PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d, want 0", got)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	e := newTestEngine(newFakeRepo(), &fakeAPI{}, true, true)

	tests := []struct {
		name string
		in   model.TransactionInput
	}{
		{"bad type", model.TransactionInput{Type: "loan", Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "2024-01-01"}},
		{"bad category", model.TransactionInput{Type: model.TypeExpense, Category: "misc", Amount: decimal.New(1, 0), Date: "2024-01-01"}},
		{"negative amount", model.TransactionInput{Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(-1, 0), Date: "2024-01-01"}},
		{"bad date", model.TransactionInput{Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Add(context.Background(), tt.in); err == nil {
				t.Error("Add() accepted invalid input")
			}
		})
	}
}

func TestSyncPendingMutualExclusion(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "1", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(5, 0), Date: "2024-05-01"})
	repo.Insert(model.Transaction{ID: "2", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(7, 0), Date: "2024-05-02"})

	api := &fakeAPI{
		createStarted: make(chan string, 2),
		createGate:    make(chan struct{}),
	}
	e := newTestEngine(repo, api, false, false)

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		e.SyncPending(context.Background())
		close(done)
	}()

	// wait until the first create is in flight, then try to start a
	// second overlapping sweep
	<-api.createStarted
	e.SyncPending(context.Background())

	close(api.createGate)
	<-api.createStarted
	<-done

	if got := api.createCount(); got != 2 {
		t.Errorf("got %d remote creates for 2 pending items, want 2", got)
	}
	if got := e.PendingCount(); got != 0 {
		t.Errorf("PendingCount() = %d, want 0", got)
	}
}

func TestSyncPendingPerItemIsolation(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "bad", Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "2024-05-01"})
	repo.Insert(model.Transaction{ID: "good", Type: model.TypeIncome, Category: model.CategoryGift, Amount: decimal.New(2, 0), Date: "2024-05-02"})

	api := &fakeAPI{
		createErr: func(tx model.Transaction) error {
			if tx.ID == "bad" {
				return errors.New("rejected")
			}
			return nil
		},
	}
	e := newTestEngine(repo, api, false, false)

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e.SyncPending(context.Background())

	if got := api.createCount(); got != 2 {
		t.Errorf("got %d remote creates, want 2 (one per item)", got)
	}

	if tx, _ := repo.get("good"); !tx.Synced {
		t.Error("good record should be synced despite the other failing")
	}
	if tx, _ := repo.get("bad"); tx.Synced {
		t.Error("bad record must stay pending")
	}
	if got := e.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}
}

func TestLoadFallbackOnFetchFailure(t *testing.T) {
	repo := newFakeRepo()
	want := model.Transaction{ID: "7", Type: model.TypeExpense, Category: model.CategoryTravel, Amount: decimal.New(300, 0), Date: "2024-04-10", Synced: true}
	repo.Insert(want)

	api := &fakeAPI{fetchErr: errors.New("connection refused")}
	e := newTestEngine(repo, api, true, true)

	if err := e.Load(context.Background(), true); err != nil {
		t.Fatalf("Load() error = %v, want nil fallback", err)
	}

	items := e.Items()
	if len(items) != 1 || items[0].ID != want.ID {
		t.Fatalf("items = %+v, want the local snapshot", items)
	}
}

func TestLoadReplacesFromNetwork(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "stale", Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "2024-01-01", Synced: true})

	api := &fakeAPI{fetched: []model.Transaction{
		{ID: "a", Type: model.TypeIncome, Category: model.CategoryGift, Amount: decimal.New(100, 0), Date: "2024-05-01"},
		{ID: "b", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(30, 0), Date: "2024-05-02"},
	}}
	e := newTestEngine(repo, api, true, true)

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	items := e.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, tx := range items {
		if !tx.Synced {
			t.Errorf("fetched record %s must be marked synced", tx.ID)
		}
	}

	if _, ok := repo.get("stale"); ok {
		t.Error("stale local record should be gone after full replace")
	}
	if _, ok := repo.get("a"); !ok {
		t.Error("fetched record missing from local cache")
	}
}

func TestLoadCachedIsCheap(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "1", Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "2024-01-01", Synced: true})

	api := &fakeAPI{}
	e := newTestEngine(repo, api, true, true)

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	first := api.fetchCnt

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if api.fetchCnt != first {
		t.Errorf("repeated Load() hit the network, fetch count %d -> %d", first, api.fetchCnt)
	}
}

func TestLoadWithoutCredential(t *testing.T) {
	t.Run("online escalates to login", func(t *testing.T) {
		e := newTestEngine(newFakeRepo(), &fakeAPI{}, false, true)
		err := e.Load(context.Background(), false)
		if !errors.Is(err, ErrLoginRequired) {
			t.Errorf("Load() error = %v, want ErrLoginRequired", err)
		}
	})

	t.Run("offline serves local cache", func(t *testing.T) {
		repo := newFakeRepo()
		repo.Insert(model.Transaction{ID: "1", Type: model.TypeExpense, Category: model.CategoryOther, Amount: decimal.New(1, 0), Date: "2024-01-01"})

		e := newTestEngine(repo, &fakeAPI{}, false, false)
		if err := e.Load(context.Background(), false); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(e.Items()) != 1 {
			t.Error("local snapshot not served while offline")
		}
	})
}

func TestLoadReplaceAllFailurePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.replaceErr = errors.New("disk full")

	api := &fakeAPI{fetched: []model.Transaction{
		{ID: "a", Type: model.TypeIncome, Category: model.CategoryGift, Amount: decimal.New(1, 0), Date: "2024-05-01"},
	}}
	e := newTestEngine(repo, api, true, true)

	if err := e.Load(context.Background(), true); err == nil {
		t.Fatal("Load() must surface a cache replacement failure")
	}

	// in-memory set still holds the fetched data
	if len(e.Items()) != 1 {
		t.Error("in-memory items should keep the fetched snapshot")
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{}
	e := newTestEngine(repo, api, true, true)

	tx, err := e.Add(context.Background(), testInput("15", "2024-05-01"))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	e.Remove(context.Background(), tx.ID)

	if _, ok := repo.get(tx.ID); ok {
		t.Error("repo still holds the removed record")
	}
	for _, it := range e.Items() {
		if it.ID == tx.ID {
			t.Error("items still holds the removed record")
		}
	}
	if len(api.deletes) != 1 || api.deletes[0] != tx.ID {
		t.Errorf("remote deletes = %v, want one for %s", api.deletes, tx.ID)
	}
}

func TestRemoveSurvivesRemoteFailure(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{deleteErr: errors.New("timeout")}
	e := newTestEngine(repo, api, true, true)

	tx, _ := e.Add(context.Background(), testInput("15", "2024-05-01"))
	e.Remove(context.Background(), tx.ID)

	if _, ok := repo.get(tx.ID); ok {
		t.Error("local deletion must not depend on the remote call")
	}
}

func TestUpdateIsNotRetried(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{updateErr: errors.New("timeout")}
	e := newTestEngine(repo, api, true, true)

	tx, _ := e.Add(context.Background(), testInput("20", "2024-05-01"))

	note := "groceries"
	e.Update(context.Background(), tx.ID, model.TransactionPatch{Note: &note})

	stored, _ := repo.get(tx.ID)
	if stored.Note != note {
		t.Errorf("local note = %q, want %q despite remote failure", stored.Note, note)
	}

	// a later sweep must not re-send the failed update
	before := api.createCount()
	e.SyncPending(context.Background())
	if got := api.createCount(); got != before {
		t.Error("sweep retried a record whose update failed but whose creation was acknowledged")
	}
	if len(api.updates) != 1 {
		t.Errorf("remote updates = %d, want exactly 1 attempt", len(api.updates))
	}
}

func TestMarkSyncedAfterRemovalIsNoop(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{
		createStarted: make(chan string, 2),
		createGate:    make(chan struct{}),
	}
	e := newTestEngine(repo, api, true, true)

	done := make(chan struct{})
	go func() {
		// the remote create blocks; the record is deleted underneath it
		e.Add(context.Background(), testInput("5", "2024-05-01"))
		close(done)
	}()

	id := <-api.createStarted

	e.mu.Lock()
	e.items = nil
	e.mu.Unlock()
	repo.Delete(id)

	close(api.createGate)
	<-done

	if _, ok := repo.get(id); ok {
		t.Error("late success acknowledgement resurrected a deleted record")
	}
	if len(e.Items()) != 0 {
		t.Error("items should stay empty")
	}
}

func TestSweepSendsCurrentFields(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "1", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(5, 0), Date: "2024-05-01", Note: "old"})

	var sent model.Transaction
	api := &fakeAPI{}
	api.createErr = func(tx model.Transaction) error {
		sent = tx
		return nil
	}
	e := newTestEngine(repo, api, false, false)

	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	note := "new"
	e.Update(context.Background(), "1", model.TransactionPatch{Note: &note})
	e.SyncPending(context.Background())

	if sent.Note != "new" {
		t.Errorf("sweep sent note %q, want the re-read current value", sent.Note)
	}
}

func TestNewIDMonotonic(t *testing.T) {
	e := newTestEngine(newFakeRepo(), &fakeAPI{}, true, true)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	a := e.newID()
	b := e.newID()
	c := e.newID()
	if a == b || b == c || a == c {
		t.Errorf("ids not unique within one millisecond: %s %s %s", a, b, c)
	}
	if !(a < b && b < c) {
		t.Errorf("ids not ordered by creation: %s %s %s", a, b, c)
	}
}

func TestByDate(t *testing.T) {
	repo := newFakeRepo()
	repo.Insert(model.Transaction{ID: "1", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(5, 0), Date: "2024-05-01 09:30:00", Synced: true})
	repo.Insert(model.Transaction{ID: "2", Type: model.TypeExpense, Category: model.CategoryDining, Amount: decimal.New(9, 0), Date: "2024-05-02", Synced: true})

	e := newTestEngine(repo, &fakeAPI{}, false, false)
	if err := e.Load(context.Background(), false); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := e.ByDate("2024-05-01")
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("ByDate() = %+v, want only transaction 1", got)
	}
}

func TestClearLocal(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{}
	e := newTestEngine(repo, api, true, true)

	if _, err := e.Add(context.Background(), testInput("8", "2024-05-01")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := e.ClearLocal(); err != nil {
		t.Fatalf("ClearLocal() error = %v", err)
	}

	if len(e.Items()) != 0 {
		t.Error("items not cleared")
	}
	if all, _ := repo.GetAll(); len(all) != 0 {
		t.Error("repo not cleared")
	}
}

func TestImportPipelineAssignsFreshIDs(t *testing.T) {
	repo := newFakeRepo()
	api := &fakeAPI{}
	e := newTestEngine(repo, api, true, true)

	var ids []string
	for i := 0; i < 3; i++ {
		tx, err := e.Add(context.Background(), testInput(fmt.Sprintf("%d", i+1), "2024-05-01"))
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		ids = append(ids, tx.ID)
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
