// Package converters translates between stored ordered items and domain models.
//
// Item.Data carries a JSON document per kind (board, status, lead). The id,
// owning collection, position and timestamps come from the item itself, so a
// lead moved between statuses converts with its new status without touching
// the payload.
//
// Conversion failures are explicit - a payload that does not decode is an error,
// never a zero value.
package converters

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/store"
)

type boardData struct {
	Name string `json:"name"`
}

type statusData struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

type interactionData struct {
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

type leadData struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Company      string            `json:"company,omitempty"`
	Observations string            `json:"observations,omitempty"`
	Interactions []interactionData `json:"interactions,omitempty"`
}

// BoardData encodes the stored payload of a board.
func BoardData(b *models.Board) (json.RawMessage, error) {
	return json.Marshal(boardData{Name: b.Name})
}

// BoardToModel converts a board item.
func BoardToModel(it store.Item) (*models.Board, error) {
	var d boardData
	if err := decode(it, &d); err != nil {
		return nil, err
	}
	return &models.Board{
		ID:        it.ID,
		Name:      d.Name,
		Position:  it.Position,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}, nil
}

// StatusData encodes the stored payload of a status.
func StatusData(s *models.Status) (json.RawMessage, error) {
	return json.Marshal(statusData{Title: s.Title, Color: s.Color})
}

// StatusToModel converts a status item. The board comes from the item's collection.
func StatusToModel(it store.Item) (*models.Status, error) {
	var d statusData
	if err := decode(it, &d); err != nil {
		return nil, err
	}
	boardID, ok := segment(it.CollectionID, 1)
	if !ok {
		return nil, fmt.Errorf("status %s: unexpected collection %q", it.ID, it.CollectionID)
	}
	return &models.Status{
		ID:        it.ID,
		BoardID:   boardID,
		Title:     d.Title,
		Color:     d.Color,
		Position:  it.Position,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}, nil
}

// StatusesToModels converts items in order.
func StatusesToModels(items []store.Item) ([]*models.Status, error) {
	result := make([]*models.Status, len(items))
	for i, it := range items {
		s, err := StatusToModel(it)
		if err != nil {
			return nil, err
		}
		result[i] = s
	}
	return result, nil
}

// LeadData encodes the stored payload of a lead.
func LeadData(l *models.Lead) (json.RawMessage, error) {
	d := leadData{
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Company:      l.Company,
		Observations: l.Observations,
	}
	for _, in := range l.Interactions {
		d.Interactions = append(d.Interactions, interactionData{Date: in.Date, Notes: in.Notes})
	}
	return json.Marshal(d)
}

// LeadToModel converts a lead item. Board and status come from the item's collection.
func LeadToModel(it store.Item) (*models.Lead, error) {
	var d leadData
	if err := decode(it, &d); err != nil {
		return nil, err
	}
	boardID, okBoard := segment(it.CollectionID, 1)
	statusID, okStatus := segment(it.CollectionID, 3)
	if !okBoard || !okStatus {
		return nil, fmt.Errorf("lead %s: unexpected collection %q", it.ID, it.CollectionID)
	}

	lead := &models.Lead{
		ID:           it.ID,
		BoardID:      boardID,
		StatusID:     statusID,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Company:      d.Company,
		Observations: d.Observations,
		Position:     it.Position,
		Version:      it.Version,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
	for _, in := range d.Interactions {
		lead.Interactions = append(lead.Interactions, models.Interaction{Date: in.Date, Notes: in.Notes})
	}
	return lead, nil
}

// LeadsToModels converts items in order.
func LeadsToModels(items []store.Item) ([]*models.Lead, error) {
	result := make([]*models.Lead, len(items))
	for i, it := range items {
		l, err := LeadToModel(it)
		if err != nil {
			return nil, err
		}
		result[i] = l
	}
	return result, nil
}

func decode(it store.Item, v any) error {
	if len(it.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(it.Data, v); err != nil {
		return fmt.Errorf("decoding %s in %s: %w", it.ID, it.CollectionID, err)
	}
	return nil
}

// segment returns the i-th segment of a collection path.
func segment(path string, i int) (string, bool) {
	segs := strings.Split(path, "/")
	if i >= len(segs) || segs[i] == "" {
		return "", false
	}
	return segs[i], true
}
