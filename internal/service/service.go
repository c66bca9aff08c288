// Package service exposes the read side of tbl_test to transports.
package service

import (
	"context"
	"fmt"

	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/maloquacious/datacycle/internal/store"
)

// Service answers record queries from an injected store.
type Service struct {
	store store.Store
	log   logger.Logger
}

// New returns a Service backed by s. A nil log uses logger.Default.
func New(s store.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default
	}
	return &Service{store: s, log: log}
}

// ListRecords returns every record currently in storage.
// Callers must not rely on the order beyond what the store documents.
func (s *Service) ListRecords(ctx context.Context) ([]store.Record, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		s.log.Error("error querying data: %v", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Ready reports whether the store is reachable and bootstrapped.
func (s *Service) Ready(ctx context.Context) (store.StoreState, error) {
	if err := s.store.Ping(ctx); err != nil {
		return store.StateMissing, err
	}
	return s.store.CheckState(ctx)
}
