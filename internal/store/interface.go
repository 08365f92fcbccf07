package store

import "github.com/yichend/billsync/internal/model"

// Repository is the Local Store contract consumed by the sync engine.
// It must stay safe to call synchronously from the engine's critical
// sections.
type Repository interface {
	GetAll() ([]model.Transaction, error)
	Insert(tx model.Transaction) error
	Update(tx model.Transaction) error
	Delete(id string) error
	MarkSynced(id string) error
	ReplaceAll(txs []model.Transaction) error
	Clear() error

	Close() error
}
