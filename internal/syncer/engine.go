// Package syncer owns the in-memory transaction set and its
// reconciliation with the remote backend. It is the only writer of the
// local cache; the CLI layer reads snapshots and calls the operations
// below, never the store or the API client directly.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yichend/billsync/internal/model"
	"github.com/yichend/billsync/internal/store"
)

// ErrLoginRequired signals that no credential is stored while the
// backend is reachable; the caller should send the user to login.
var ErrLoginRequired = errors.New("login required")

// API is the remote collaborator contract. The implementation owns auth
// headers and token refresh; the engine only issues data calls.
type API interface {
	FetchTransactions(ctx context.Context) ([]model.Transaction, error)
	CreateTransaction(ctx context.Context, tx model.Transaction) error
	UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Credentials reports whether a stored credential exists. Validity is
// the API client's problem.
type Credentials interface {
	Has() bool
}

type Engine struct {
	mu                   sync.Mutex
	items                []model.Transaction
	isSyncing            bool
	hasLoadedFromNetwork bool
	hasLocalLoaded       bool
	lastID               int64

	repo   store.Repository
	api    API
	creds  Credentials
	online func() bool
	log    zerolog.Logger
	now    func() time.Time
}

func New(repo store.Repository, api API, creds Credentials, online func() bool, log zerolog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		api:    api,
		creds:  creds,
		online: online,
		log:    log,
		now:    time.Now,
	}
}

// Load populates the in-memory set from the best available source: the
// local cache first so callers are never blocked on the network, then
// the backend when a credential exists. A successful fetch replaces
// both memory and the local cache wholesale; remote is authoritative on
// load. Fetch failures fall back to the cache silently, but a failure
// to persist a fetched snapshot is returned (the cache rolled back, the
// in-memory set still holds valid data).
func (e *Engine) Load(ctx context.Context, forceNetwork bool) error {
	e.mu.Lock()
	if len(e.items) > 0 || e.hasLocalLoaded {
		if !e.hasLocalLoaded {
			e.loadLocalLocked()
		}
		if !forceNetwork {
			e.mu.Unlock()
			return nil
		}
	}
	e.mu.Unlock()

	if !e.creds.Has() {
		if e.online() {
			return ErrLoginRequired
		}
		e.log.Warn().Msg("no credential and offline, serving local cache")
		e.fallbackToLocal()
		return nil
	}

	txs, err := e.api.FetchTransactions(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("remote load failed, falling back to local cache")
		e.fallbackToLocal()
		return nil
	}

	// Everything the backend returned has, by definition, an
	// acknowledged creation.
	for i := range txs {
		txs[i].Synced = true
	}

	e.mu.Lock()
	e.items = txs
	e.hasLoadedFromNetwork = true
	e.hasLocalLoaded = true
	e.mu.Unlock()

	if err := e.repo.ReplaceAll(txs); err != nil {
		return fmt.Errorf("failed to persist remote snapshot: %w", err)
	}

	return nil
}

// Add creates a new pending transaction. The record is in memory and in
// the local cache before any network activity; the remote create is one
// best-effort attempt, followed by a pending sweep either way. Only
// input validation is surfaced as an error.
func (e *Engine) Add(ctx context.Context, in model.TransactionInput) (model.Transaction, error) {
	if err := in.Validate(); err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:       e.newID(),
		Type:     in.Type,
		Category: in.Category,
		Amount:   in.Amount,
		Note:     in.Note,
		Date:     in.Date,
		Synced:   false,
	}

	e.mu.Lock()
	e.items = append(e.items, tx)
	e.mu.Unlock()

	if err := e.repo.Insert(tx); err != nil {
		e.log.Error().Err(err).Str("id", tx.ID).Msg("failed to persist new transaction")
	}

	if err := e.api.CreateTransaction(ctx, tx); err != nil {
		e.log.Warn().Err(err).Str("id", tx.ID).Msg("remote create failed, record stays pending")
	} else {
		e.markSynced(tx.ID)
		tx.Synced = true
	}

	e.SyncPending(ctx)

	return tx, nil
}

// Update applies patch to the record immediately and unconditionally.
// The remote update is attempted once; a failure is logged and never
// retried, and the local mutation is not rolled back.
func (e *Engine) Update(ctx context.Context, id string, patch model.TransactionPatch) {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		e.log.Warn().Str("id", id).Msg("update for unknown transaction ignored")
		return
	}
	e.items[idx] = patch.Apply(e.items[idx])
	updated := e.items[idx]
	e.mu.Unlock()

	if err := e.repo.Update(updated); err != nil {
		e.log.Error().Err(err).Str("id", id).Msg("failed to persist transaction update")
	}

	if err := e.api.UpdateTransaction(ctx, id, patch); err != nil {
		e.log.Warn().Err(err).Str("id", id).Msg("remote update failed, not retried")
	}
}

// Remove deletes the record locally, then attempts the remote delete
// once. A failed remote delete leaves an orphan server-side until the
// next full load; it is never resurrected locally.
func (e *Engine) Remove(ctx context.Context, id string) {
	e.mu.Lock()
	kept := e.items[:0:0]
	for _, t := range e.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	e.items = kept
	e.mu.Unlock()

	if err := e.repo.Delete(id); err != nil {
		e.log.Error().Err(err).Str("id", id).Msg("failed to delete transaction locally")
	}

	if err := e.api.DeleteTransaction(ctx, id); err != nil {
		e.log.Warn().Err(err).Str("id", id).Msg("remote delete failed, remote copy may linger")
	}
}

// SyncPending sweeps all pending records and attempts one remote create
// per record. Overlapping invocations are no-ops while a sweep is in
// flight; one record's failure never aborts the rest.
func (e *Engine) SyncPending(ctx context.Context) {
	e.mu.Lock()
	if e.isSyncing {
		e.mu.Unlock()
		return
	}
	var pending []string
	for _, t := range e.items {
		if !t.Synced {
			pending = append(pending, t.ID)
		}
	}
	if len(pending) == 0 {
		e.mu.Unlock()
		return
	}
	e.isSyncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.isSyncing = false
		e.mu.Unlock()
	}()

	for _, id := range pending {
		// Re-read current fields; the record may have been updated or
		// removed since the sweep started.
		e.mu.Lock()
		idx := e.indexLocked(id)
		if idx < 0 || e.items[idx].Synced {
			e.mu.Unlock()
			continue
		}
		tx := e.items[idx]
		e.mu.Unlock()

		if err := e.api.CreateTransaction(ctx, tx); err != nil {
			e.log.Warn().Err(err).Str("id", id).Msg("sync attempt failed, keeping pending")
			continue
		}
		e.markSynced(id)
	}
}

// Items returns a snapshot of the in-memory set in insertion order.
func (e *Engine) Items() []model.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Transaction, len(e.items))
	copy(out, e.items)
	return out
}

// ByDate returns the snapshot filtered to one calendar day (YYYY-MM-DD).
func (e *Engine) ByDate(day string) []model.Transaction {
	var out []model.Transaction
	for _, t := range e.Items() {
		if t.Day() == day {
			out = append(out, t)
		}
	}
	return out
}

// PendingCount reports how many records still await remote acknowledgement.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.items {
		if !t.Synced {
			n++
		}
	}
	return n
}

// ClearLocal wipes the local cache and the in-memory set. Remote data
// is untouched and comes back on the next forced load.
func (e *Engine) ClearLocal() error {
	if err := e.repo.Clear(); err != nil {
		return fmt.Errorf("failed to clear local cache: %w", err)
	}

	e.mu.Lock()
	e.items = nil
	e.mu.Unlock()

	return nil
}

// markSynced flips the flag in memory and in the local cache. Marking a
// record that was deleted while its create call was in flight is a
// harmless no-op on both sides.
func (e *Engine) markSynced(id string) {
	e.mu.Lock()
	if idx := e.indexLocked(id); idx >= 0 {
		e.items[idx].Synced = true
	}
	e.mu.Unlock()

	if err := e.repo.MarkSynced(id); err != nil {
		e.log.Error().Err(err).Str("id", id).Msg("failed to persist synced flag")
	}
}

func (e *Engine) fallbackToLocal() {
	e.mu.Lock()
	if !e.hasLocalLoaded {
		e.loadLocalLocked()
	}
	e.mu.Unlock()
}

func (e *Engine) loadLocalLocked() {
	txs, err := e.repo.GetAll()
	if err != nil {
		e.log.Error().Err(err).Msg("failed to read local cache")
		return
	}
	e.items = txs
	e.hasLocalLoaded = true
}

func (e *Engine) indexLocked(id string) int {
	for i, t := range e.items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// newID returns a millisecond-timestamp id, bumped monotonically on
// same-millisecond collisions. Not guessable beyond creation order and
// unique within a device, which is all the backend requires.
func (e *Engine) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return strconv.FormatInt(id, 10)
}
