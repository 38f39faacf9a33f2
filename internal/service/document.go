package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docsai/internal/model"
	"docsai/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
)

// untitledPrefix is the stem of generated document titles ("Untitled 1", "Untitled 2", ...).
const untitledPrefix = "Untitled"

// DocumentService owns the document collection and its persisted representation.
type DocumentService interface {
	// List returns every document. Order is unspecified; see Sorted.
	List(ctx context.Context) ([]model.Document, error)

	// Get returns a single document by its ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Document, error)

	// FindByTitle returns the first document whose title equals title exactly, or ErrNotFound.
	FindByTitle(ctx context.Context, title string) (*model.Document, error)

	// Create appends an empty document. A blank title is replaced by the next free "Untitled N".
	Create(ctx context.Context, title string) (*model.Document, error)

	// CreateWithContent is Create with initial content.
	CreateWithContent(ctx context.Context, title, content string) (*model.Document, error)

	// Update merges patch into the document and bumps LastModified.
	// An unknown id is a silent no-op.
	Update(ctx context.Context, id string, patch model.DocumentPatch) error

	// Delete removes a document. An unknown id is a silent no-op.
	Delete(ctx context.Context, id string) error

	// Reload discards the in-memory collection and reads it from storage again.
	Reload(ctx context.Context) error
}

// documentService keeps the collection in memory and writes it through the
// repository on every mutation. Mutations run on a copy that replaces the
// in-memory collection only after the write succeeds.
type documentService struct {
	mu     sync.Mutex
	repo   repository.DocumentRepository
	log    *zap.Logger
	docs   []model.Document
	loaded bool

	now   func() time.Time
	newID func() string
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(repo repository.DocumentRepository, log *zap.Logger) DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &documentService{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Sorted returns a copy of docs ordered by LastModified, newest first.
func Sorted(docs []model.Document) []model.Document {
	out := append([]model.Document(nil), docs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified > out[j].LastModified
	})
	return out
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return append([]model.Document{}, s.docs...), nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if i := indexOf(s.docs, id); i >= 0 {
		d := s.docs[i]
		return &d, nil
	}
	return nil, ErrNotFound
}

func (s *documentService) FindByTitle(ctx context.Context, title string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	for _, d := range s.docs {
		if d.Title == title {
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *documentService) Create(ctx context.Context, title string) (*model.Document, error) {
	return s.CreateWithContent(ctx, title, "")
}

func (s *documentService) CreateWithContent(ctx context.Context, title, content string) (*model.Document, error) {
	var created model.Document
	err := s.mutate(ctx, func(docs []model.Document) ([]model.Document, bool) {
		created = model.Document{
			ID:           s.newID(),
			Title:        resolveTitle(docs, title, ""),
			Content:      content,
			LastModified: model.Timestamp(s.now()),
		}
		return append(docs, created), true
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("document_created", zap.String("document_id", created.ID), zap.String("title", created.Title))
	return &created, nil
}

func (s *documentService) Update(ctx context.Context, id string, patch model.DocumentPatch) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.mutate(ctx, func(docs []model.Document) ([]model.Document, bool) {
		i := indexOf(docs, id)
		if i < 0 {
			return docs, false
		}
		if patch.Title != nil {
			docs[i].Title = resolveTitle(docs, *patch.Title, id)
		}
		if patch.Content != nil {
			docs[i].Content = *patch.Content
		}
		docs[i].LastModified = model.Timestamp(s.now())
		return docs, true
	})
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	err := s.mutate(ctx, func(docs []model.Document) ([]model.Document, bool) {
		i := indexOf(docs, id)
		if i < 0 {
			return docs, false
		}
		return append(docs[:i], docs[i+1:]...), true
	})
	if err == nil {
		s.log.Info("document_deleted", zap.String("document_id", id))
	}
	return err
}

func (s *documentService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	return s.ensureLoaded(ctx)
}

// mutate applies fn to a copy of the collection and persists the result.
// The in-memory collection is replaced only after a successful write.
func (s *documentService) mutate(ctx context.Context, fn func([]model.Document) ([]model.Document, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	next, changed := fn(append([]model.Document{}, s.docs...))
	if !changed {
		return nil
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.log.Error("documents_persist_failed", zap.Error(err))
		return fmt.Errorf("persist documents: %w", err)
	}
	s.docs = next
	return nil
}

// ensureLoaded reads the collection on first use. Callers hold s.mu.
func (s *documentService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	docs, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	s.docs = docs
	s.loaded = true
	return nil
}

func indexOf(docs []model.Document, id string) int {
	for i := range docs {
		if docs[i].ID == id {
			return i
		}
	}
	return -1
}

// resolveTitle trims title, falling back to the first "Untitled N" not used by
// any document other than excludeID.
func resolveTitle(docs []model.Document, title, excludeID string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	used := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if d.ID != excludeID {
			used[d.Title] = struct{}{}
		}
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s %d", untitledPrefix, n)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
