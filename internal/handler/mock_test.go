package handler_test

import (
	"context"
	"sync"
)

type secretStore struct {
	value string
}

func (s *secretStore) GetSecret(_ context.Context, _ string, _ bool) (*string, error) {
	return &s.value, nil
}

type objectStore struct {
	mu  sync.Mutex
	ids []string
}

func (s *objectStore) PutS3Object(_ context.Context, id string, _ string, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	return nil
}
