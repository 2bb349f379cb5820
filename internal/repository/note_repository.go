package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/domain/note"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"gorm.io/gorm"
)

// NoteModel is the GORM model for notes.
type NoteModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Plate     string    `gorm:"size:16;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name.
func (NoteModel) TableName() string {
	return "notes"
}

// GormNoteRepository implements note.Repository.
type GormNoteRepository struct {
	db *gorm.DB
}

// NewGormNoteRepository creates a new GormNoteRepository.
func NewGormNoteRepository(db *gorm.DB) *GormNoteRepository {
	return &GormNoteRepository{db: db}
}

func (r *GormNoteRepository) FindAll(ctx context.Context, plate string) ([]*note.Note, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if plate != "" {
		q = q.Where("plate = ?", plate)
	}
	var models []NoteModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	notes := make([]*note.Note, len(models))
	for i, m := range models {
		notes[i] = note.Reconstruct(m.ID, m.Plate, m.Text, m.CreatedAt, m.UpdatedAt)
	}
	return notes, nil
}

func (r *GormNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*note.Note, error) {
	var m NoteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Note", id.String())
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return note.Reconstruct(m.ID, m.Plate, m.Text, m.CreatedAt, m.UpdatedAt), nil
}

func (r *GormNoteRepository) Save(ctx context.Context, n *note.Note) error {
	model := &NoteModel{
		ID:        n.ID(),
		Plate:     n.Plate(),
		Text:      n.Text(),
		CreatedAt: n.CreatedAt(),
		UpdatedAt: n.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

func (r *GormNoteRepository) Update(ctx context.Context, n *note.Note) error {
	result := r.db.WithContext(ctx).
		Model(&NoteModel{}).
		Where("id = ?", n.ID()).
		Updates(map[string]interface{}{"text": n.Text(), "updated_at": n.UpdatedAt()})
	if result.Error != nil {
		return fmt.Errorf("failed to update note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Note", n.ID().String())
	}
	return nil
}

func (r *GormNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&NoteModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Note", id.String())
	}
	return nil
}
