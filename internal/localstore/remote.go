package localstore

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/truckledger/service-logistics/internal/client"
	"github.com/truckledger/service-logistics/internal/domain/kv"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
	"go.uber.org/zap"
)

// Remote is the server side of the mirror.
type Remote interface {
	List(ctx context.Context) ([]kv.Entry, error)
	Put(ctx context.Context, key string, value []byte, stamp int64) error
	Delete(ctx context.Context, key string) error
}

// RemoteKV is a Remote over the REST client. Network failures, timeouts, 429 and 5xx
// are retried with exponential backoff. Other HTTP errors are returned at once.
type RemoteKV struct {
	client     *client.Client
	maxRetries uint64
	logger     *zap.Logger
}

// NewRemoteKV creates a RemoteKV.
func NewRemoteKV(c *client.Client, maxRetries uint64, logger *zap.Logger) *RemoteKV {
	return &RemoteKV{client: c, maxRetries: maxRetries, logger: logger}
}

func (r *RemoteKV) List(ctx context.Context) ([]kv.Entry, error) {
	var entries []kv.Entry
	err := r.retry(ctx, "list", func() error {
		var err error
		entries, err = r.client.ListKV(ctx)
		return err
	})
	return entries, err
}

func (r *RemoteKV) Put(ctx context.Context, key string, value []byte, stamp int64) error {
	return r.retry(ctx, key, func() error {
		_, err := r.client.PutKV(ctx, key, value, stamp)
		return err
	})
}

func (r *RemoteKV) Delete(ctx context.Context, key string) error {
	return r.retry(ctx, key, func() error {
		err := r.client.DeleteKV(ctx, key)
		if client.Status(err) == http.StatusNotFound {
			return nil
		}
		return err
	})
}

func (r *RemoteKV) retry(ctx context.Context, key string, op func() error) error {
	operation := func() error {
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, r.maxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		r.logger.Debug("retrying remote kv", zap.String("key", key), zap.Duration("wait", wait), zap.Error(err))
	}
	return backoff.RetryNotify(operation, policy, notify)
}

func retryable(err error) bool {
	switch apperror.KindOf(err) {
	case apperror.KindNetwork, apperror.KindTimeout:
		return true
	case apperror.KindHTTP:
		status := client.Status(err)
		return status == http.StatusTooManyRequests || status >= 500
	}
	return false
}
