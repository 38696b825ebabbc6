// Package association maps pages to the audience group whose overlays they
// show. A page without an association shows nothing.
package association

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

// Store persists page to group associations
type Store interface {
	// Get returns the stored group and whether one exists
	Get(ctx context.Context, page string) (string, bool, error)
	// Set stores group for page
	Set(ctx context.Context, page, group string) error
	// Delete removes the association of page
	Delete(ctx context.Context, page string) error
}

// Service reads and writes page associations
type Service struct {
	store  Store
	logger zerolog.Logger
}

// NewService creates an association service on store
func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "association").Logger(),
	}
}

// Get returns the normalized group of page, or "" when none is assigned
func (s *Service) Get(ctx context.Context, page string) (string, error) {
	const op = "AssociationService.Get"

	page, err := pageKey(page, op)
	if err != nil {
		return "", err
	}

	group, ok, err := s.store.Get(ctx, page)
	if err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("failed to read page group")
		return "", unavailable(op, err)
	}
	if !ok {
		return "", nil
	}
	return string(overlay.NormalizeGroupID(group)), nil
}

// Set assigns group to page. An empty group removes the association; "0" is
// a group like any other.
func (s *Service) Set(ctx context.Context, page, group string) error {
	const op = "AssociationService.Set"

	page, err := pageKey(page, op)
	if err != nil {
		return err
	}

	normalized := overlay.NormalizeGroupID(group)
	if normalized == "" {
		err = s.store.Delete(ctx, page)
	} else {
		err = s.store.Set(ctx, page, string(normalized))
	}
	if err != nil {
		s.logger.Error().Err(err).Str("page", page).Msg("failed to write page group")
		return unavailable(op, err)
	}

	s.logger.Debug().Str("page", page).Str("group", string(normalized)).Msg("page group updated")
	return nil
}

func pageKey(page, op string) (string, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return "", errors.NewError("INVALID_INPUT", "page is required", op, errors.ErrInvalidInput)
	}
	return page, nil
}

func unavailable(op string, err error) error {
	return errors.NewError("UNAVAILABLE", "page associations are unavailable", op, fmt.Errorf("%w: %v", errors.ErrUnavailable, err))
}

// MemoryStore keeps associations in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	groups map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{groups: make(map[string]string)}
}

func (m *MemoryStore) Get(ctx context.Context, page string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group, ok := m.groups[page]
	return group, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, page, group string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[page] = group
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, page string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, page)
	return nil
}
