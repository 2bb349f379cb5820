// Package session models an authenticated driver or client login with an explicit lifecycle:
// created at login, destroyed at logout or on expiry.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

// Role distinguishes drivers (own a plate) from clients (request quotes).
type Role string

const (
	RoleDriver Role = "driver"
	RoleClient Role = "client"
)

// Session is the state carried by a bearer token.
type Session struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Plate     string    `json:"plate,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewDriverSession opens a session for a driver operating the given plate.
func NewDriverSession(name, plate, phone string, ttl time.Duration) (*Session, error) {
	name = strings.TrimSpace(name)
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if name == "" || plate == "" {
		return nil, apperror.NewValidationError("name and plate are required")
	}
	return newSession(RoleDriver, name, plate, strings.TrimSpace(phone), ttl), nil
}

// NewClientSession opens a session for a client.
func NewClientSession(name, phone string, ttl time.Duration) (*Session, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, apperror.NewValidationError("name and phone are required")
	}
	return newSession(RoleClient, name, "", phone, ttl), nil
}

func newSession(role Role, name, plate, phone string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     uuid.NewString(),
		Role:      role,
		Name:      name,
		Plate:     plate,
		Phone:     phone,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CanOperate reports whether the session may mutate data owned by plate.
func (s *Session) CanOperate(plate string) bool {
	return s.Role == RoleDriver && strings.EqualFold(s.Plate, strings.TrimSpace(plate))
}

// Store persists sessions by token.
type Store interface {
	Save(ctx context.Context, s *Session) error
	// Find returns a NotFound error for unknown or expired tokens.
	Find(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
