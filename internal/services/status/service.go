package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/leadboard/internal/converters"
	"github.com/thenoetrevino/leadboard/internal/models"
	"github.com/thenoetrevino/leadboard/internal/ordering"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
	"github.com/thenoetrevino/leadboard/internal/slug"
	"github.com/thenoetrevino/leadboard/internal/store"
)

// Service defines all board and status operations
type Service interface {
	// Boards
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error)
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	ListBoards(ctx context.Context) ([]*models.Board, error)

	// Read operations
	GetStatus(ctx context.Context, boardID, id string) (*models.Status, error)
	ListStatuses(ctx context.Context, boardID string) ([]*models.Status, error)

	// Write operations
	CreateStatus(ctx context.Context, req CreateStatusRequest) (*models.Status, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Status, error)
	DeleteStatus(ctx context.Context, boardID, id string) error

	// Ordering
	ReorderStatus(ctx context.Context, boardID, id string, index int) error
	SetStatusPosition(ctx context.Context, boardID, id string, position int64) error
}

// CreateBoardRequest creates a board. An empty ID gets a generated one.
type CreateBoardRequest struct {
	ID   string `json:"id" validate:"omitempty,max=64,excludes=/"`
	Name string `json:"name" validate:"max=100"`
}

// CreateStatusRequest appends a status to a board
type CreateStatusRequest struct {
	BoardID string `json:"-" validate:"required,excludes=/"`
	Title   string `json:"title" validate:"required,max=50"`
	Color   string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateStatusRequest changes a status' title or color. The id stays.
type UpdateStatusRequest struct {
	BoardID string  `json:"-" validate:"required"`
	ID      string  `json:"-" validate:"required"`
	Title   *string `json:"title" validate:"omitempty,min=1,max=50"`
	Color   *string `json:"color" validate:"omitempty,hexcolor"`
}

// service implements Service on top of the ordering engine
type service struct {
	engine   *ordering.Engine
	attempts int
}

// NewService creates a new status service. Ordering operations that lose a
// concurrent write are retried up to retryAttempts times.
func NewService(engine *ordering.Engine, retryAttempts int) Service {
	return &service{engine: engine, attempts: retryAttempts}
}

func (s *service) CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	// boards are created once per owner; a second create returns the first
	if b, err := s.GetBoard(ctx, id); err == nil {
		return b, nil
	} else if !errors.Is(err, ErrBoardNotFound) {
		return nil, err
	}

	data, err := converters.BoardData(&models.Board{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		return nil, err
	}
	item, err := s.engine.InsertAtEnd(ctx, models.BoardsCollection, id, data)
	if errors.Is(err, ordering.ErrAlreadyExists) {
		return s.GetBoard(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}
	return converters.BoardToModel(item)
}

func (s *service) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	item, err := s.engine.Get(ctx, models.BoardsCollection, id)
	if errors.Is(err, ordering.ErrItemNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return converters.BoardToModel(item)
}

func (s *service) ListBoards(ctx context.Context) ([]*models.Board, error) {
	items, err := s.engine.List(ctx, models.BoardsCollection)
	if err != nil {
		return nil, err
	}
	boards := make([]*models.Board, 0, len(items))
	for _, it := range items {
		b, err := converters.BoardToModel(it)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}

func (s *service) GetStatus(ctx context.Context, boardID, id string) (*models.Status, error) {
	item, err := s.engine.Get(ctx, models.StatusesCollection(boardID), id)
	if err != nil {
		return nil, mapErr(err)
	}
	return converters.StatusToModel(item)
}

func (s *service) ListStatuses(ctx context.Context, boardID string) ([]*models.Status, error) {
	if _, err := s.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}
	items, err := s.engine.List(ctx, models.StatusesCollection(boardID))
	if err != nil {
		return nil, err
	}
	return converters.StatusesToModels(items)
}

// CreateStatus appends a status whose id is the folded title, so two titles
// differing only in case or accents collide.
func (s *service) CreateStatus(ctx context.Context, req CreateStatusRequest) (*models.Status, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	id := slug.Make(req.Title)
	if id == "" {
		return nil, ErrInvalidTitle
	}

	data, err := converters.StatusData(&models.Status{Title: req.Title, Color: req.Color})
	if err != nil {
		return nil, err
	}

	created, err := s.engine.InsertAtEnd(ctx, models.StatusesCollection(req.BoardID), id, data)
	if err != nil {
		return nil, mapErr(err)
	}
	return converters.StatusToModel(created)
}

func (s *service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Status, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if slug.Make(trimmed) == "" {
			return nil, ErrInvalidTitle
		}
		req.Title = &trimmed
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var updated *models.Status
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		item, err := s.engine.UpdateData(ctx, models.StatusesCollection(req.BoardID), req.ID,
			func(raw json.RawMessage) (json.RawMessage, error) {
				current, err := converters.StatusToModel(statusItem(req.BoardID, req.ID, raw))
				if err != nil {
					return nil, err
				}
				if req.Title != nil {
					current.Title = *req.Title
				}
				if req.Color != nil {
					current.Color = *req.Color
				}
				return converters.StatusData(current)
			})
		if err != nil {
			return err
		}
		updated, err = converters.StatusToModel(item)
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return updated, nil
}

// DeleteStatus removes a status together with all of its leads.
func (s *service) DeleteStatus(ctx context.Context, boardID, id string) error {
	err := s.engine.DeleteWithChildren(ctx, models.StatusesCollection(boardID), id, models.LeadsCollection(boardID, id))
	return mapErr(err)
}

func (s *service) ReorderStatus(ctx context.Context, boardID, id string, index int) error {
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		return s.engine.Reorder(ctx, models.StatusesCollection(boardID), id, index)
	})
	return mapErr(err)
}

// SetStatusPosition writes an explicit order value, for callers that compute
// positions themselves.
func (s *service) SetStatusPosition(ctx context.Context, boardID, id string, position int64) error {
	err := ordering.Retry(ctx, s.attempts, func(ctx context.Context) error {
		return s.engine.SetPosition(ctx, models.StatusesCollection(boardID), id, position)
	})
	return mapErr(err)
}

// statusItem rebuilds enough of an item to decode a status payload.
func statusItem(boardID, id string, data json.RawMessage) store.Item {
	return store.Item{ID: id, CollectionID: models.StatusesCollection(boardID), Data: data}
}

// mapErr turns ordering errors into status errors, keeping the original in the chain.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ordering.ErrCollectionNotFound):
		return fmt.Errorf("%w: %w", ErrBoardNotFound, err)
	case errors.Is(err, ordering.ErrItemNotFound):
		return fmt.Errorf("%w: %w", ErrStatusNotFound, err)
	case errors.Is(err, ordering.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", ErrStatusExists, err)
	default:
		return err
	}
}
