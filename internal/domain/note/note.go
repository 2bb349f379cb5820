package note

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// MaxTextLength bounds a note body in runes.
const MaxTextLength = 2000

// Note is a free-text reminder, optionally attached to a plate.
type Note struct {
	id        uuid.UUID
	plate     string
	text      string
	createdAt time.Time
	updatedAt time.Time
}

// NewNote creates a note.
func NewNote(plate, text string) (*Note, error) {
	text, err := validText(text)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Note{
		id:        uuid.New(),
		plate:     strings.ToUpper(strings.TrimSpace(plate)),
		text:      text,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Note from persistence.
func Reconstruct(id uuid.UUID, plate, text string, createdAt, updatedAt time.Time) *Note {
	return &Note{
		id:        id,
		plate:     plate,
		text:      text,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Getters.
func (n *Note) ID() uuid.UUID        { return n.id }
func (n *Note) Plate() string        { return n.plate }
func (n *Note) Text() string         { return n.text }
func (n *Note) CreatedAt() time.Time { return n.createdAt }
func (n *Note) UpdatedAt() time.Time { return n.updatedAt }

// Edit replaces the text.
func (n *Note) Edit(text string) error {
	text, err := validText(text)
	if err != nil {
		return err
	}
	n.text = text
	n.updatedAt = time.Now().UTC()
	return nil
}

func validText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.NewValidationError("note text is required")
	}
	if len([]rune(text)) > MaxTextLength {
		return "", apperror.NewValidationError("note text is too long")
	}
	return text, nil
}

// Repository defines persistence operations for notes.
type Repository interface {
	// FindAll returns notes newest first, optionally only those of plate.
	FindAll(ctx context.Context, plate string) ([]*Note, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Note, error)
	Save(ctx context.Context, n *Note) error
	Update(ctx context.Context, n *Note) error
	Delete(ctx context.Context, id uuid.UUID) error
}
