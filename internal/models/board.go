package models

import (
	"time"

	"github.com/thenoetrevino/leadboard/internal/store"
)

// BoardsCollection holds every board
const BoardsCollection = "boards"

// Board is the kanban board that owns statuses
type Board struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusesCollection returns the collection path of a board's statuses
func StatusesCollection(boardID string) string {
	return store.Join(BoardsCollection, boardID, "statuses")
}

// LeadsCollection returns the collection path of the leads in one status
func LeadsCollection(boardID, statusID string) string {
	return store.Join(BoardsCollection, boardID, "statuses", statusID, "leads")
}

// BoardPrefix matches every collection under a board, for event subscriptions
func BoardPrefix(boardID string) string {
	return store.Join(BoardsCollection, boardID) + "/"
}
