// Package store persists normalized workflow documents, one document per
// dag_id, in a blob bucket or in Redis
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/pkg/api"
)

type (
	// Store saves and loads workflow documents. Saving an id that already
	// exists replaces its document
	Store interface {
		Save(ctx context.Context, w *dag.Workflow) error
		Load(ctx context.Context, id api.DAGID) ([]byte, error)
		Close() error
	}

	// Unavailable is a Store that fails every operation with the reason it
	// could not be opened
	Unavailable struct {
		Err error
	}
)

// DocumentExt is appended to a dag_id to form its blob key
const DocumentExt = ".json"

var (
	ErrNotFound       = errors.New("dag not found")
	ErrStoreFailed    = errors.New("dag store failed")
	ErrUnsupportedURL = errors.New("unsupported dag store url")
)

var redisSchemes = []string{"redis", "rediss"}

// Open selects a Store for the URL: redis and rediss URLs open a
// RedisStore whose keys start with prefix, and anything else is opened as a
// gocloud blob bucket
func Open(ctx context.Context, storeURL, prefix string) (Store, error) {
	u, err := url.Parse(storeURL)
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, storeURL)
	}
	for _, s := range redisSchemes {
		if strings.EqualFold(u.Scheme, s) {
			return NewRedisStore(storeURL, prefix)
		}
	}
	return NewBlobStore(ctx, storeURL)
}

// Encode renders a validated workflow as its stored document
func Encode(w *dag.Workflow) ([]byte, error) {
	if err := w.ID.Validate(); err != nil {
		return nil, err
	}
	doc, err := w.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return doc, nil
}

// Save returns the reason the store is unavailable
func (u *Unavailable) Save(context.Context, *dag.Workflow) error {
	return u.Err
}

// Load returns the reason the store is unavailable
func (u *Unavailable) Load(context.Context, api.DAGID) ([]byte, error) {
	return nil, u.Err
}

// Close does nothing
func (u *Unavailable) Close() error {
	return nil
}

var _ Store = (*Unavailable)(nil)
