package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/errors"
	"github.com/wrale/wrale-proof/internal/wproofd/overlay"
)

type settingsService struct {
	repo   Repository
	logger zerolog.Logger

	// writeMu serializes read-modify-write cycles; mu guards the cache
	writeMu sync.Mutex
	mu      sync.RWMutex
	cached  *Settings
}

// NewService creates a settings service backed by repo
func NewService(repo Repository, logger zerolog.Logger) Service {
	return &settingsService{
		repo:   repo,
		logger: logger.With().Str("component", "settings").Logger(),
	}
}

func (s *settingsService) Get(ctx context.Context) (Settings, error) {
	current, err := s.load(ctx)
	if err != nil {
		return Settings{}, err
	}
	return current.Clone(), nil
}

func (s *settingsService) Save(ctx context.Context, next Settings) (Settings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next = next.Clone()
	next.Rotation = next.Rotation.WithDefaults()
	for i := range next.Items {
		next.Items[i].Groups = normalizeGroups(next.Items[i].Groups)
	}
	if err := s.store(ctx, next); err != nil {
		return Settings{}, err
	}
	return next.Clone(), nil
}

func (s *settingsService) AddItem(ctx context.Context, item overlay.ContentItem) (overlay.ContentItem, error) {
	const op = "SettingsService.AddItem"

	var added overlay.ContentItem
	err := s.update(ctx, func(current *Settings) error {
		for _, g := range item.Groups {
			id := overlay.NormalizeGroupID(string(g))
			if !hasGroup(current, id) {
				return errors.NewError("NOT_FOUND", fmt.Sprintf("group %s does not exist", id), op, errors.ErrNotFound)
			}
		}
		item.ID = current.nextItemID()
		item.Groups = normalizeGroups(item.Groups)
		current.Items = append(current.Items, item)
		added = item
		return nil
	})
	if err != nil {
		return overlay.ContentItem{}, err
	}

	s.logger.Info().Int("id", added.ID).Str("type", string(added.Type)).Msg("content item added")
	return added, nil
}

func (s *settingsService) RemoveItem(ctx context.Context, id int) error {
	const op = "SettingsService.RemoveItem"

	err := s.update(ctx, func(current *Settings) error {
		for i, item := range current.Items {
			if item.ID == id {
				current.Items = append(current.Items[:i], current.Items[i+1:]...)
				return nil
			}
		}
		return errors.NewError("NOT_FOUND", fmt.Sprintf("item %d not found", id), op, errors.ErrNotFound)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("id", id).Msg("content item removed")
	return nil
}

func (s *settingsService) AddGroup(ctx context.Context, group overlay.DisplayGroup) (overlay.DisplayGroup, error) {
	var added overlay.DisplayGroup
	err := s.update(ctx, func(current *Settings) error {
		group.ID = current.nextGroupID()
		current.Groups = append(current.Groups, group)
		added = group
		return nil
	})
	if err != nil {
		return overlay.DisplayGroup{}, err
	}

	s.logger.Info().Int("id", added.ID).Str("name", added.Name).Msg("display group added")
	return added, nil
}

func (s *settingsService) RemoveGroup(ctx context.Context, id int) error {
	const op = "SettingsService.RemoveGroup"

	err := s.update(ctx, func(current *Settings) error {
		found := false
		for i, g := range current.Groups {
			if g.ID == id {
				current.Groups = append(current.Groups[:i], current.Groups[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return errors.NewError("NOT_FOUND", fmt.Sprintf("group %d not found", id), op, errors.ErrNotFound)
		}

		removed := overlay.GroupIDFromInt(id)
		for i := range current.Items {
			kept := current.Items[i].Groups[:0]
			for _, g := range current.Items[i].Groups {
				if overlay.NormalizeGroupID(string(g)) != removed {
					kept = append(kept, g)
				}
			}
			current.Items[i].Groups = kept
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int("id", id).Msg("display group removed")
	return nil
}

func (s *settingsService) Eligible(ctx context.Context, group string) (Selection, error) {
	current, err := s.load(ctx)
	if err != nil {
		return Selection{}, err
	}

	sel := Selection{
		Group:    overlay.NormalizeGroupID(group),
		Rotation: current.Rotation,
	}
	if !current.Enabled {
		return sel, nil
	}

	// FilterEligible copies item values; group slices are shared with the
	// cache, which is never mutated in place.
	sel.Items = overlay.FilterEligible(current.Items, group)
	return sel, nil
}

// load returns the cached settings, reading through to the repository on a
// miss. The returned value must not be modified.
func (s *settingsService) load(ctx context.Context) (*Settings, error) {
	const op = "SettingsService.load"

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	loaded, err := s.repo.Load(ctx)
	if errors.IsNotFound(err) {
		defaults := Defaults()
		loaded, err = &defaults, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load settings")
		return nil, errors.NewError("UNAVAILABLE", "settings could not be loaded", op, fmt.Errorf("%w: %v", errors.ErrUnavailable, err))
	}
	loaded.Rotation = loaded.Rotation.WithDefaults()

	s.mu.Lock()
	s.cached = loaded
	s.mu.Unlock()
	return loaded, nil
}

func (s *settingsService) update(ctx context.Context, mutate func(*Settings) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}

	next := current.Clone()
	if err := mutate(&next); err != nil {
		return err
	}
	return s.store(ctx, next)
}

func (s *settingsService) store(ctx context.Context, next Settings) error {
	const op = "SettingsService.store"

	if err := next.Validate(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error().Err(err).Msg("failed to save settings")
		if errors.CodeOf(err) != "" {
			return err
		}
		return errors.NewError("INTERNAL", "settings could not be saved", op, err)
	}

	stored := next.Clone()
	s.mu.Lock()
	s.cached = &stored
	s.mu.Unlock()
	return nil
}

func normalizeGroups(groups []overlay.GroupID) []overlay.GroupID {
	out := make([]overlay.GroupID, 0, len(groups))
	for _, g := range groups {
		if id := overlay.NormalizeGroupID(string(g)); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func hasGroup(s *Settings, id overlay.GroupID) bool {
	for _, g := range s.Groups {
		if g.GroupID() == id {
			return true
		}
	}
	return false
}
