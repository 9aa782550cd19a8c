package models

import "time"

// Lead is a contact record positioned inside a status
type Lead struct {
	ID           string        `json:"id"`
	BoardID      string        `json:"board_id"`
	StatusID     string        `json:"status_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Company      string        `json:"company,omitempty"`
	Observations string        `json:"observations,omitempty"`
	Interactions []Interaction `json:"interactions,omitempty"`
	Position     int64         `json:"position"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Interaction is one entry of a lead's contact history
type Interaction struct {
	Date   time.Time `json:"date"`
	Author string    `json:"author,omitempty"`
	Notes  string    `json:"notes"`
}

// Collection returns the path of the collection holding the lead
func (l *Lead) Collection() string {
	return LeadsCollection(l.BoardID, l.StatusID)
}
