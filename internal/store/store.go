// Package store defines the ordered collection store consumed by the ordering
// engine and the services. Backends live in sub-packages (sqlstore, badgerstore).
package store

import (
	"context"
	"encoding/json"
	"time"
)

// Item is a positioned document inside a collection.
type Item struct {
	ID           string          `json:"id"`
	CollectionID string          `json:"collectionId"`
	Position     int64           `json:"position"`
	Data         json.RawMessage `json:"data,omitempty"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left untouched.
// A non-zero ExpectedVersion makes the write conditional on the stored version.
type Patch struct {
	Position        *int64
	Data            json.RawMessage
	ExpectedVersion int64
}

// OpKind identifies a batched write.
type OpKind int

const (
	OpCreate OpKind = iota
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is one write of a Batch. Create uses Item; Update uses Item.CollectionID,
// Item.ID and Patch; Delete uses Item.CollectionID and Item.ID.
type Op struct {
	Kind  OpKind
	Item  Item
	Patch Patch
}

// CreateOp, UpdateOp and DeleteOp build batch operations.
func CreateOp(item Item) Op { return Op{Kind: OpCreate, Item: item} }

func UpdateOp(collection, id string, patch Patch) Op {
	return Op{Kind: OpUpdate, Item: Item{CollectionID: collection, ID: id}, Patch: patch}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Item: Item{CollectionID: collection, ID: id}}
}

// Reader is the read half of the store.
type Reader interface {
	// ListSorted returns every item of collection ordered by position, ties broken by id.
	ListSorted(ctx context.Context, collection string) ([]Item, error)
	// Get returns ErrNotFound when the item does not exist.
	Get(ctx context.Context, collection, id string) (Item, error)
	// Last returns the highest positioned item or ErrNotFound for an empty collection.
	Last(ctx context.Context, collection string) (Item, error)
}

// Writer is the write half of the store.
type Writer interface {
	// Create stores item with Version 1. Zero timestamps are set to now.
	Create(ctx context.Context, item Item) (Item, error)
	// Update applies patch, bumps the version and refreshes UpdatedAt.
	Update(ctx context.Context, collection, id string, patch Patch) error
	// Delete removes the item; ErrNotFound when absent.
	Delete(ctx context.Context, collection, id string) error
}

// Tx is the view handed to a RunInTx callback.
type Tx interface {
	Reader
	Writer
}

// Store is an ordered collection store with atomic batch and transaction primitives.
type Store interface {
	Reader
	Writer

	// Batch applies every op or none of them.
	Batch(ctx context.Context, ops []Op) error

	// RunInTx runs fn in a transaction. Conflicting concurrent writes surface as
	// ErrConflict, in which case nothing fn wrote is visible.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close() error
}
