package composition

import (
	"context"

	"github.com/rs/zerolog/log"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/cache"
	"contrapunto/internal/pkg/workflow"
)

// ImportScript seeds the composition from a generated news script. Whatever
// the backend echoes back, every imported unit starts fresh: idle, no result,
// no error. A script without dialogs yields an empty unit list, not an error.
func (s *Service) ImportScript(ctx context.Context, ownerID, compID, searchQuery string) (*model.Composition, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return nil, err
	}

	script, err := s.fetchScript(ctx, searchQuery)
	if err != nil {
		return nil, err
	}

	units := make([]model.DialogUnit, 0, len(script.Dialogs))
	for i, d := range script.Dialogs {
		index := d.Index
		if index <= 0 {
			index = i + 1
		}
		units = append(units, model.DialogUnit{
			Index:     index,
			Character: model.Character(d.Character),
			Mode:      model.ModeTextToVideo,
			Dialog:    d.Dialog,
			Status:    model.UnitStatusIdle,
		})
	}

	if err := s.store.ApplyScript(compID, script.Title, script.Summary, units); err != nil {
		return nil, err
	}
	s.persist(ctx, compID)

	log.Info().
		Str("composition_id", compID).
		Int("units", len(units)).
		Str("title", script.Title).
		Msg("script imported")
	return s.store.Get(compID)
}

// fetchScript consults the Redis cache before the script backend. Only
// queries are cached; an empty query asks the backend for a fresh topic every
// time.
func (s *Service) fetchScript(ctx context.Context, searchQuery string) (*workflow.Script, error) {
	useCache := s.cache != nil && searchQuery != ""
	key := cache.ScriptCacheKey(searchQuery)

	if useCache {
		var cached workflow.Script
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			log.Debug().Str("query", searchQuery).Msg("script cache hit")
			return &cached, nil
		} else if !cache.IsMiss(err) {
			log.Warn().Err(err).Msg("script cache read failed")
		}
	}

	script, err := s.flow.GenerateScript(ctx, searchQuery)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, key, script, cache.ScriptCacheTTL); err != nil {
			log.Warn().Err(err).Msg("script cache write failed")
		}
	}
	return script, nil
}
