package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"docsai/internal/completion"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one editor surface: its document tracker, legacy element
// sequence and AI panel.
type Session struct {
	ID        string
	CreatedAt time.Time
	Tracker   *Tracker
	Elements  *ElementSequence
	Panel     *AssistPanel
}

// SessionRegistry holds live sessions. A session expires after ttl without
// being looked up.
type SessionRegistry struct {
	sessions *cache.Cache
	ttl      time.Duration
	docs     DocumentService
	gateway  completion.Gateway
	log      *zap.Logger
}

// NewSessionRegistry returns a registry. ttl <= 0 keeps sessions until deleted.
func NewSessionRegistry(docs DocumentService, gateway completion.Gateway, ttl time.Duration, log *zap.Logger) *SessionRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	expiry, cleanup := ttl, ttl
	if ttl <= 0 {
		expiry, cleanup = cache.NoExpiration, 0
	}
	r := &SessionRegistry{
		sessions: cache.New(expiry, cleanup),
		ttl:      expiry,
		docs:     docs,
		gateway:  gateway,
		log:      log,
	}
	r.sessions.OnEvicted(func(id string, _ interface{}) {
		r.log.Debug("session_evicted", zap.String("session_id", id))
	})
	return r
}

// Create starts a session with an empty editor.
func (r *SessionRegistry) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Tracker:   NewTracker(r.docs, r.log),
		Elements:  NewElementSequence(),
		Panel:     NewAssistPanel(r.docs, r.gateway, r.log),
	}
	r.sessions.Set(s.ID, s, r.ttl)
	r.log.Info("session_created", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and extends its expiry.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	r.sessions.Set(id, s, r.ttl)
	return s, nil
}

// Delete ends a session. Unknown ids are ignored.
func (r *SessionRegistry) Delete(id string) {
	r.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	return r.sessions.ItemCount()
}

// DeleteDocument removes a document from the store and repairs every session
// that had it active.
func (r *SessionRegistry) DeleteDocument(ctx context.Context, id string) error {
	if err := r.docs.Delete(ctx, id); err != nil {
		return err
	}
	var errs []error
	for _, item := range r.sessions.Items() {
		s := item.Object.(*Session)
		if err := s.Tracker.DocumentDeleted(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
