package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/note"
)

// NoteRequest holds the text of a note.
type NoteRequest struct {
	Plate string `json:"plate"`
	Text  string `json:"text" binding:"required"`
}

// NoteDTO is the response representation of a note.
type NoteDTO struct {
	ID        uuid.UUID `json:"id"`
	Plate     string    `json:"plate,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteService manages free-text notes.
type NoteService struct {
	repo note.Repository
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo note.Repository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) List(ctx context.Context, plate string) ([]NoteDTO, error) {
	notes, err := s.repo.FindAll(ctx, normalizePlate(plate))
	if err != nil {
		return nil, err
	}
	dtos := make([]NoteDTO, len(notes))
	for i, n := range notes {
		dtos[i] = toNoteDTO(n)
	}
	return dtos, nil
}

// Create stores a note for the driver's plate. A note without a plate gets the actor's.
func (s *NoteService) Create(ctx context.Context, actorPlate string, req NoteRequest) (*NoteDTO, error) {
	if req.Plate == "" {
		req.Plate = actorPlate
	}
	if err := ensurePlate(actorPlate, req.Plate); err != nil {
		return nil, err
	}
	n, err := note.NewNote(req.Plate, req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, err
	}
	result := toNoteDTO(n)
	return &result, nil
}

func (s *NoteService) Update(ctx context.Context, actorPlate string, id uuid.UUID, req NoteRequest) (*NoteDTO, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensurePlate(actorPlate, n.Plate()); err != nil {
		return nil, err
	}
	if err := n.Edit(req.Text); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	result := toNoteDTO(n)
	return &result, nil
}

func (s *NoteService) Delete(ctx context.Context, actorPlate string, id uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := ensurePlate(actorPlate, n.Plate()); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func toNoteDTO(n *note.Note) NoteDTO {
	return NoteDTO{
		ID:        n.ID(),
		Plate:     n.Plate(),
		Text:      n.Text(),
		CreatedAt: n.CreatedAt(),
		UpdatedAt: n.UpdatedAt(),
	}
}
