package store

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/internal/util"
	"github.com/kode4food/airdraw/pkg/api"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobStore keeps each workflow as <dag_id>.json in a gocloud.dev bucket:
// a local directory, S3, GCS, Azure Blob Storage, or memory
type BlobStore struct {
	bucket *blob.Bucket
	locks  *util.KeyedMutex[api.DAGID]
}

const contentType = "application/json; charset=utf-8"

var _ Store = (*BlobStore)(nil)

// NewBlobStore opens the bucket at bucketURL
func NewBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedURL, err)
	}
	return &BlobStore{
		bucket: bucket,
		locks:  util.NewKeyedMutex[api.DAGID](),
	}, nil
}

// Save writes the workflow document, replacing any earlier document with
// the same id. Saves of one id are serialized
func (s *BlobStore) Save(ctx context.Context, w *dag.Workflow) error {
	doc, err := Encode(w)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(w.ID)
	defer unlock()

	err = s.bucket.WriteAll(ctx, keyFor(w.ID), doc, &blob.WriterOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return nil
}

// Load returns the stored document for id
func (s *BlobStore) Load(ctx context.Context, id api.DAGID) ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	data, err := s.bucket.ReadAll(ctx, keyFor(id))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return data, nil
}

// Close releases the bucket
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

func keyFor(id api.DAGID) string {
	return string(id) + DocumentExt
}
