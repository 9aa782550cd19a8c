package models

import "time"

// Status is a column of a board. Its ID is derived from the title.
type Status struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"board_id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusWithLeads is a column together with its ordered leads
type StatusWithLeads struct {
	*Status
	Leads []*Lead `json:"leads"`
}
