package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/thenoetrevino/leadboard/internal/converters"
	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/ordering"
	"github.com/thenoetrevino/leadboard/internal/orderkey"
	"github.com/thenoetrevino/leadboard/internal/slug"
	"github.com/thenoetrevino/leadboard/internal/store"
	"github.com/thenoetrevino/leadboard/internal/store/sqlstore"
)

// NewTestStore opens an in-memory SQLite store with the full schema
func NewTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), sqlstore.Config{Dialect: sqlstore.SQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// NewTestEngine returns an engine over a fresh in-memory store
func NewTestEngine(t *testing.T, opts ...ordering.Option) *ordering.Engine {
	t.Helper()
	return ordering.New(NewTestStore(t), opts...)
}

// appendItem writes an item after the last one of collection
func appendItem(t *testing.T, s store.Store, collection, id string, data json.RawMessage) {
	t.Helper()
	ctx := context.Background()

	var last *int64
	tail, err := s.Last(ctx, collection)
	switch {
	case err == nil:
		last = &tail.Position
	case !errors.Is(err, store.ErrNotFound):
		t.Fatalf("Failed to read tail of %s: %v", collection, err)
	}

	pos, err := orderkey.NextAfter(last)
	if err != nil {
		t.Fatalf("No room after tail of %s: %v", collection, err)
	}
	if _, err := s.Create(ctx, store.Item{
		ID:           id,
		CollectionID: collection,
		Position:     pos,
		Data:         data,
	}); err != nil {
		t.Fatalf("Failed to create %s in %s: %v", id, collection, err)
	}
}

// CreateTestBoard creates a board and returns its id
func CreateTestBoard(t *testing.T, s store.Store, id string) string {
	t.Helper()
	data, err := converters.BoardData(&models.Board{Name: id})
	if err != nil {
		t.Fatalf("Failed to encode board: %v", err)
	}
	appendItem(t, s, models.BoardsCollection, id, data)
	return id
}

// CreateTestStatus appends a status to a board and returns its id
func CreateTestStatus(t *testing.T, s store.Store, boardID, title string) string {
	t.Helper()
	data, err := converters.StatusData(&models.Status{Title: title, Color: "#5F87D7"})
	if err != nil {
		t.Fatalf("Failed to encode status: %v", err)
	}
	id := slug.Make(title)
	appendItem(t, s, models.StatusesCollection(boardID), id, data)
	return id
}

// CreateTestBoardWithStatuses creates a board with the given statuses in order
func CreateTestBoardWithStatuses(t *testing.T, s store.Store, boardID string, titles ...string) []string {
	t.Helper()
	CreateTestBoard(t, s, boardID)
	ids := make([]string, len(titles))
	for i, title := range titles {
		ids[i] = CreateTestStatus(t, s, boardID, title)
	}
	return ids
}

// CreateTestLead appends a lead to a status and returns its id
func CreateTestLead(t *testing.T, s store.Store, boardID, statusID, name string) string {
	t.Helper()
	data, err := converters.LeadData(&models.Lead{
		Name:  name,
		Email: slug.Make(name) + "@example.com",
		Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("Failed to encode lead: %v", err)
	}
	id := slug.Make(name)
	appendItem(t, s, models.LeadsCollection(boardID, statusID), id, data)
	return id
}

// LeadOrder returns the lead ids of a status in position order
func LeadOrder(t *testing.T, s store.Store, boardID, statusID string) []string {
	t.Helper()
	items, err := s.ListSorted(context.Background(), models.LeadsCollection(boardID, statusID))
	if err != nil {
		t.Fatalf("Failed to list leads: %v", err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
