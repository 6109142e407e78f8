package redis

import (
	"context"
	"sync"

	"github.com/redis/rueidis"

	"github.com/wildone/asset-share-commons/internal/db"
)

// Session pins one connection from the pool until Close.
func (s *Store) Session(_ context.Context) (db.Session, error) {
	client, cancel := s.client.Dedicate()
	return &session{client: client, cancel: cancel}, nil
}

type session struct {
	client rueidis.DedicatedClient
	cancel func()

	mu     sync.Mutex
	closed bool
}

func (s *session) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, &db.Error{Op: db.OpHGetAll, Err: db.ErrSessionClosed}
	}

	cmd := s.client.B().Hgetall().Key(key).Build()
	m, err := s.client.Do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// Close returns the connection to the pool once.
func (s *session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}
