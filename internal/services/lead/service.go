package lead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/leadboard/internal/converters"
	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/ordering"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
	"github.com/thenoetrevino/leadboard/internal/slug"
	"github.com/thenoetrevino/leadboard/internal/store"
)

// Service defines all lead-related business operations
type Service interface {
	// Read operations
	GetLead(ctx context.Context, boardID, statusID, id string) (*models.Lead, error)
	ListLeads(ctx context.Context, boardID, statusID string) ([]*models.Lead, error)
	ListBoard(ctx context.Context, boardID string) ([]*models.StatusWithLeads, error)

	// Write operations
	CreateLead(ctx context.Context, req CreateLeadRequest) (*models.Lead, error)
	UpdateLead(ctx context.Context, req UpdateLeadRequest) (*models.Lead, error)
	AddInteraction(ctx context.Context, boardID, statusID, id string, in models.Interaction) (*models.Lead, error)
	DeleteLead(ctx context.Context, boardID, statusID, id string) error
	DeleteAllLeads(ctx context.Context, boardID, statusID string) (int, error)

	// Lead movements
	ReorderLead(ctx context.Context, boardID, statusID, id string, index int) error
	MoveLead(ctx context.Context, req MoveLeadRequest) (*models.Lead, error)
	RebalanceLeads(ctx context.Context, boardID, statusID string) error
}

// ListingCache serves collection listings, calling fill on a miss.
type ListingCache interface {
	Load(ctx context.Context, collection string, fill func(ctx context.Context) ([]store.Item, error)) ([]store.Item, error)
}

// CreateLeadRequest encapsulates all data needed to create a lead
type CreateLeadRequest struct {
	BoardID      string `json:"-" validate:"required,excludes=/"`
	StatusID     string `json:"status_id" validate:"required,excludes=/"`
	Name         string `json:"name" validate:"required,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,max=40"`
	Company      string `json:"company" validate:"max=120"`
	Observations string `json:"observations" validate:"max=2000"`
	// Index places the lead among its status' leads. Nil appends.
	Index *int `json:"index" validate:"omitempty,min=0"`
}

// UpdateLeadRequest changes a lead's contact data.
// Fields with pointers are optional - nil means don't update
type UpdateLeadRequest struct {
	BoardID      string                `json:"-" validate:"required"`
	StatusID     string                `json:"-" validate:"required"`
	ID           string                `json:"-" validate:"required"`
	Name         *string               `json:"name" validate:"omitempty,max=120"`
	Email        *string               `json:"email" validate:"omitempty,email"`
	Phone        *string               `json:"phone" validate:"omitempty,max=40"`
	Company      *string               `json:"company" validate:"omitempty,max=120"`
	Observations *string               `json:"observations" validate:"omitempty,max=2000"`
	Interactions *[]models.Interaction `json:"-"`
}

// MoveLeadRequest moves a lead to another status of the same board.
// A nil Index appends to the destination.
type MoveLeadRequest struct {
	BoardID string `json:"-" validate:"required"`
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	ID      string `json:"-" validate:"required"`
	Index   *int   `json:"index" validate:"omitempty,min=0"`
}

// service implements Service interface
type service struct {
	engine   *ordering.Engine
	cache    ListingCache
	attempts int
}

// NewService creates a new lead service. cache may be nil, in which case
// listings always read the store.
func NewService(engine *ordering.Engine, cache ListingCache, retryAttempts int) Service {
	return &service{engine: engine, cache: cache, attempts: retryAttempts}
}

// CreateLead validates the request and adds the lead to its status, at the end
// unless an index is given
func (s *service) CreateLead(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	data, err := converters.LeadData(&models.Lead{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Company:      strings.TrimSpace(req.Company),
		Observations: strings.TrimSpace(req.Observations),
	})
	if err != nil {
		return nil, err
	}

	collection := models.LeadsCollection(req.BoardID, req.StatusID)
	var item store.Item
	if req.Index != nil {
		item, err = s.engine.InsertAt(ctx, collection, newID(req.Name), data, *req.Index)
	} else {
		item, err = s.engine.InsertAtEnd(ctx, collection, newID(req.Name), data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", mapErr(err))
	}
	return converters.LeadToModel(item)
}

// newID prefixes a short random suffix with the folded name, so ids stay
// readable in the CLI.
func newID(name string) string {
	prefix := slug.Make(name)
	if len(prefix) > 24 {
		prefix = prefix[:24]
	}
	if prefix == "" {
		prefix = "lead"
	}
	return prefix + "-" + uuid.NewString()[:8]
}

func (s *service) GetLead(ctx context.Context, boardID, statusID, id string) (*models.Lead, error) {
	item, err := s.engine.Get(ctx, models.LeadsCollection(boardID, statusID), id)
	if err != nil {
		return nil, mapErr(err)
	}
	return converters.LeadToModel(item)
}

// ListLeads returns the leads of a status in position order
func (s *service) ListLeads(ctx context.Context, boardID, statusID string) ([]*models.Lead, error) {
	if _, err := s.engine.Get(ctx, models.StatusesCollection(boardID), statusID); err != nil {
		if errors.Is(err, ordering.ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrStatusNotFound, statusID)
		}
		return nil, err
	}

	collection := models.LeadsCollection(boardID, statusID)
	fill := func(ctx context.Context) ([]store.Item, error) {
		return s.engine.List(ctx, collection)
	}

	var (
		items []store.Item
		err   error
	)
	if s.cache != nil {
		items, err = s.cache.Load(ctx, collection, fill)
	} else {
		items, err = fill(ctx)
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return converters.LeadsToModels(items)
}

// ListBoard returns every status of a board with its leads, statuses in order
func (s *service) ListBoard(ctx context.Context, boardID string) ([]*models.StatusWithLeads, error) {
	if _, err := s.engine.Get(ctx, models.BoardsCollection, boardID); err != nil {
		if errors.Is(err, ordering.ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
		}
		return nil, err
	}

	items, err := s.engine.List(ctx, models.StatusesCollection(boardID))
	if err != nil {
		return nil, err
	}
	statuses, err := converters.StatusesToModels(items)
	if err != nil {
		return nil, err
	}

	columns := make([]*models.StatusWithLeads, len(statuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range statuses {
		columns[i] = &models.StatusWithLeads{Status: st}
		g.Go(func() error {
			leads, err := s.ListLeads(gctx, boardID, st.ID)
			if err != nil {
				return err
			}
			columns[i].Leads = leads
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return columns, nil
}

// UpdateLead applies the non-nil fields of req to the stored lead
func (s *service) UpdateLead(ctx context.Context, req UpdateLeadRequest) (*models.Lead, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", validate.ErrInvalid)
	}

	return s.mutate(ctx, req.BoardID, req.StatusID, req.ID, func(l *models.Lead) error {
		if req.Name != nil {
			l.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil {
			l.Email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			l.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Company != nil {
			l.Company = strings.TrimSpace(*req.Company)
		}
		if req.Observations != nil {
			l.Observations = strings.TrimSpace(*req.Observations)
		}
		if req.Interactions != nil {
			l.Interactions = *req.Interactions
		}
		return nil
	})
}

// AddInteraction appends one entry to the lead's contact history. A zero date
// is stamped with the current time.
func (s *service) AddInteraction(ctx context.Context, boardID, statusID, id string, in models.Interaction) (*models.Lead, error) {
	in.Notes = strings.TrimSpace(in.Notes)
	in.Author = strings.TrimSpace(in.Author)
	if in.Notes == "" {
		return nil, ErrEmptyInteraction
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	return s.mutate(ctx, boardID, statusID, id, func(l *models.Lead) error {
		l.Interactions = append(l.Interactions, in)
		return nil
	})
}

// mutate rewrites a lead's payload, retrying when a concurrent write wins
func (s *service) mutate(ctx context.Context, boardID, statusID, id string, apply func(*models.Lead) error) (*models.Lead, error) {
	collection := models.LeadsCollection(boardID, statusID)

	var updated *models.Lead
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		item, err := s.engine.UpdateData(ctx, collection, id, func(raw json.RawMessage) (json.RawMessage, error) {
			current, err := converters.LeadToModel(store.Item{ID: id, CollectionID: collection, Data: raw})
			if err != nil {
				return nil, err
			}
			if err := apply(current); err != nil {
				return nil, err
			}
			return converters.LeadData(current)
		})
		if err != nil {
			return err
		}
		updated, err = converters.LeadToModel(item)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return updated, nil
}

func (s *service) DeleteLead(ctx context.Context, boardID, statusID, id string) error {
	return mapErr(s.engine.Delete(ctx, models.LeadsCollection(boardID, statusID), id))
}

// DeleteAllLeads empties a status in one batch and returns how many leads were removed
func (s *service) DeleteAllLeads(ctx context.Context, boardID, statusID string) (int, error) {
	var n int
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		n, err = s.engine.DeleteAll(ctx, models.LeadsCollection(boardID, statusID))
		return err
	})
	return n, mapErr(err)
}

func (s *service) ReorderLead(ctx context.Context, boardID, statusID, id string, index int) error {
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		return s.engine.Reorder(ctx, models.LeadsCollection(boardID, statusID), id, index)
	})
	return mapErr(err)
}

// MoveLead moves a lead between two statuses of one board atomically
func (s *service) MoveLead(ctx context.Context, req MoveLeadRequest) (*models.Lead, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var moved store.Item
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		moved, err = s.engine.Move(ctx, ordering.MoveRequest{
			From:   models.LeadsCollection(req.BoardID, req.From),
			To:     models.LeadsCollection(req.BoardID, req.To),
			ItemID: req.ID,
			Index:  req.Index,
		})
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return converters.LeadToModel(moved)
}

// RebalanceLeads re-spaces the positions of a status' leads, keeping their order
func (s *service) RebalanceLeads(ctx context.Context, boardID, statusID string) error {
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		return s.engine.Rebalance(ctx, models.LeadsCollection(boardID, statusID), "", 0)
	})
	return mapErr(err)
}

// mapErr turns ordering errors into lead errors, keeping the original in the chain.
func mapErr(err error) error {
	var missing *ordering.CollectionNotFoundError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &missing):
		return fmt.Errorf("%w: %s %w", ErrStatusNotFound, missing.Side, err)
	case errors.Is(err, ordering.ErrItemNotFound):
		return fmt.Errorf("%w: %w", ErrLeadNotFound, err)
	case errors.Is(err, ordering.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", ErrLeadExists, err)
	default:
		return err
	}
}
