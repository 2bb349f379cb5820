package application

import (
	"context"
	"fmt"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/driver"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// DriverLoginRequest holds the data a driver signs in with.
type DriverLoginRequest struct {
	Name  string `json:"name" binding:"required"`
	Plate string `json:"plate" binding:"required"`
	Phone string `json:"phone"`
}

// ClientLoginRequest holds the data a client signs in with.
type ClientLoginRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// SessionService creates, resolves and destroys sessions.
type SessionService struct {
	store   session.Store
	drivers driver.Repository
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(store session.Store, drivers driver.Repository, ttl time.Duration, logger *zap.Logger) *SessionService {
	return &SessionService{store: store, drivers: drivers, ttl: ttl, logger: logger}
}

// LoginDriver opens a driver session and registers the driver in the directory by plate.
func (s *SessionService) LoginDriver(ctx context.Context, req DriverLoginRequest) (*session.Session, error) {
	sess, err := session.NewDriverSession(req.Name, req.Plate, req.Phone, s.ttl)
	if err != nil {
		return nil, err
	}

	if err := s.upsertDriver(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info("driver signed in", zap.String("plate", sess.Plate))
	return sess, nil
}

// LoginClient opens a client session.
func (s *SessionService) LoginClient(ctx context.Context, req ClientLoginRequest) (*session.Session, error) {
	sess, err := session.NewClientSession(req.Name, req.Phone, s.ttl)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Resolve returns the live session for token. Unknown tokens are Unauthorized.
func (s *SessionService) Resolve(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.store.Find(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorizedError("session expired or unknown")
		}
		return nil, err
	}
	return sess, nil
}

// Logout destroys the session.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

func (s *SessionService) upsertDriver(ctx context.Context, sess *session.Session) error {
	existing, err := s.drivers.FindByPlate(ctx, sess.Plate)
	switch {
	case err == nil:
		if existing.Name() == sess.Name && (sess.Phone == "" || existing.Phone() == sess.Phone) {
			return nil
		}
		existing.Update(sess.Name, sess.Phone, "")
		existing.IncrementVersion()
		return s.drivers.Update(ctx, existing)
	case apperror.IsNotFound(err):
		d, err := driver.NewDriver(sess.Name, sess.Phone, sess.Plate)
		if err != nil {
			return err
		}
		return s.drivers.Save(ctx, d)
	default:
		return err
	}
}
