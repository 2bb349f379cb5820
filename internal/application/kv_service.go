package application

import (
	"context"

	"github.com/truckledger/service-logistics/internal/domain/kv"
)

// KVService exposes the mirrored key-value state.
type KVService struct {
	repo kv.Repository
}

// NewKVService creates a new KVService.
func NewKVService(repo kv.Repository) *KVService {
	return &KVService{repo: repo}
}

func (s *KVService) List(ctx context.Context) ([]kv.Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []kv.Entry{}
	}
	return entries, nil
}

func (s *KVService) Get(ctx context.Context, key string) (kv.Entry, error) {
	return s.repo.Get(ctx, key)
}

// Put stores value under key unless a higher stamp is already stored, and
// returns the entry that is stored afterwards.
func (s *KVService) Put(ctx context.Context, key string, value []byte, stamp int64) (kv.Entry, error) {
	e, err := kv.NewEntry(key, value, stamp)
	if err != nil {
		return kv.Entry{}, err
	}
	return s.repo.Put(ctx, e)
}

func (s *KVService) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}
