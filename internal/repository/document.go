package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"docsai/internal/model"
	"docsai/internal/storage"
)

// DocumentRepository persists the whole document collection as one unit.
// No business logic here, strictly serialization and storage.
type DocumentRepository interface {
	// Load returns the stored collection. A missing or unreadable blob yields an empty collection.
	Load(ctx context.Context) ([]model.Document, error)

	// Save replaces the stored collection with docs. An empty collection removes the key.
	Save(ctx context.Context, docs []model.Document) error
}

// DocumentBlob stores the collection as a JSON array under a single storage key.
type DocumentBlob struct {
	store storage.Storage
	key   string
	log   *zap.Logger
}

// NewDocumentBlob creates a DocumentBlob repository writing to key in store.
func NewDocumentBlob(store storage.Storage, key string, log *zap.Logger) *DocumentBlob {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentBlob{store: store, key: key, log: log}
}

var _ DocumentRepository = (*DocumentBlob)(nil)

// Load reads and decodes the collection. Corrupt blobs and duplicate ids are
// logged and repaired rather than returned as errors; only backend failures
// are reported.
func (r *DocumentBlob) Load(ctx context.Context) ([]model.Document, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.Document{}, nil
		}
		return nil, fmt.Errorf("read documents: %w", err)
	}

	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		r.log.Warn("documents_blob_corrupt",
			zap.String("key", r.key),
			zap.Int("size", len(raw)),
			zap.Error(err),
		)
		return []model.Document{}, nil
	}

	seen := make(map[string]struct{}, len(docs))
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			r.log.Warn("documents_blob_missing_id", zap.String("title", d.Title))
			continue
		}
		if _, dup := seen[d.ID]; dup {
			r.log.Warn("documents_blob_duplicate_id", zap.String("document_id", d.ID))
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out, nil
}

// Save encodes docs and replaces the stored blob. An empty collection deletes
// the key instead, which Load reads back as empty.
func (r *DocumentBlob) Save(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		if err := r.store.Delete(ctx, r.key); err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode documents: %w", err)
	}
	if err := r.store.Put(ctx, r.key, raw); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}
