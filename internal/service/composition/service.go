// Package composition implements the generation and merge orchestrator: it
// owns the dialog units of each composition, drives them through the external
// generation backends, coordinates the ordered merge into one composite video
// and gates the optional publish step.
package composition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/cache"
	"contrapunto/internal/pkg/id"
	"contrapunto/internal/pkg/storage"
	"contrapunto/internal/pkg/workflow"
	repo "contrapunto/internal/repository/composition"
)

// Service is the orchestrator. One instance drives all compositions; the
// store serializes state transitions while the network calls run outside its
// lock, so independent units can generate concurrently.
type Service struct {
	store *Store
	flow  *workflow.Client
	repo  repo.Repository // optional, nil runs in memory only
	clips storage.Storage // optional, required for video_to_video units
	cache *cache.RedisCache

	requireBackground bool
	maxClipSize       int64
}

// Options are the optional collaborators of the service.
type Options struct {
	Repository        repo.Repository
	ClipStorage       storage.Storage
	Cache             *cache.RedisCache
	RequireBackground bool
	MaxClipSize       int64
}

// NewService creates the orchestrator.
func NewService(flow *workflow.Client, opts Options) *Service {
	maxClip := opts.MaxClipSize
	if maxClip <= 0 {
		maxClip = 256 << 20
	}
	return &Service{
		store:             NewStore(),
		flow:              flow,
		repo:              opts.Repository,
		clips:             opts.ClipStorage,
		cache:             opts.Cache,
		requireBackground: opts.RequireBackground,
		maxClipSize:       maxClip,
	}
}

// CreateComposition starts an empty composition for the operator.
func (s *Service) CreateComposition(ctx context.Context, ownerID, title, summary string) (*model.Composition, error) {
	now := time.Now()
	c := &model.Composition{
		ID:        id.New(),
		OwnerID:   ownerID,
		Title:     title,
		Summary:   summary,
		Units:     []model.DialogUnit{},
		NextIndex: 1,
		Merge:     model.CompositeResult{Status: model.MergeStatusIdle},
		Publish:   model.PublishRecord{Status: model.PublishStatusIdle},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.store.Put(c)
	s.persist(ctx, c.ID)
	return c, nil
}

// GetComposition returns the aggregate, loading it from persistence on a
// cold start.
func (s *Service) GetComposition(ctx context.Context, ownerID, compID string) (*model.Composition, error) {
	if err := s.ensureLoaded(ctx, compID); err != nil {
		return nil, err
	}
	c, err := s.store.Get(compID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, ErrCompositionNotFound
	}
	return c, nil
}

// ListCompositions lists the operator's compositions.
func (s *Service) ListCompositions(ctx context.Context, ownerID string) ([]*model.Composition, error) {
	if s.repo != nil {
		comps, err := s.repo.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("list compositions: %w", err)
		}
		return comps, nil
	}
	return s.store.List(ownerID), nil
}

// DeleteComposition soft-deletes the aggregate.
func (s *Service) DeleteComposition(ctx context.Context, ownerID, compID string) error {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return err
	}

	s.store.Remove(compID)
	if s.repo != nil {
		if err := s.repo.SoftDelete(ctx, compID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("delete composition: %w", err)
		}
	}
	return nil
}

// AddUnit appends a fresh idle unit.
func (s *Service) AddUnit(ctx context.Context, ownerID, compID string) (model.DialogUnit, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.DialogUnit{}, err
	}

	unit, err := s.store.AddUnit(compID)
	if err != nil {
		return model.DialogUnit{}, err
	}
	s.persist(ctx, compID)
	return unit, nil
}

// UpdateUnit applies a field-subset edit.
func (s *Service) UpdateUnit(ctx context.Context, ownerID, compID string, index int, patch UnitPatch) (model.DialogUnit, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.DialogUnit{}, err
	}

	unit, err := s.store.UpdateUnit(compID, index, patch)
	if err != nil {
		return model.DialogUnit{}, err
	}
	s.persist(ctx, compID)
	return unit, nil
}

// RemoveUnit deletes a unit.
func (s *Service) RemoveUnit(ctx context.Context, ownerID, compID string, index int) error {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return err
	}

	if err := s.store.RemoveUnit(compID, index); err != nil {
		return err
	}
	s.persist(ctx, compID)
	return nil
}

// AttachClip validates and stores an uploaded source clip, then points the
// unit at it. Only MP4 uploads are accepted, by declared media type.
func (s *Service) AttachClip(ctx context.Context, ownerID, compID string, index int, filename, contentType string, size int64, data io.Reader) (model.DialogUnit, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.DialogUnit{}, err
	}
	if s.clips == nil {
		return model.DialogUnit{}, fmt.Errorf("clip storage not configured")
	}

	if !isMP4(contentType) {
		return model.DialogUnit{}, &model.ValidationError{Message: model.MsgInvalidClip}
	}
	if size > s.maxClipSize {
		return model.DialogUnit{}, &model.ValidationError{Message: model.MsgInvalidClip}
	}

	key := fmt.Sprintf("clips/%s/%d-%s.mp4", compID, index, id.New())
	url, err := s.clips.Upload(ctx, key, io.LimitReader(data, s.maxClipSize), contentType)
	if err != nil {
		return model.DialogUnit{}, fmt.Errorf("store clip: %w", err)
	}

	clip := model.ClipRef{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		Size:        size,
		Filename:    filename,
	}
	unit, err := s.store.AttachClip(compID, index, clip)
	if err != nil {
		return model.DialogUnit{}, err
	}
	s.persist(ctx, compID)
	return unit, nil
}

func isMP4(contentType string) bool {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == "video/mp4"
}

// ensureLoaded pulls the aggregate into memory from persistence if needed.
func (s *Service) ensureLoaded(ctx context.Context, compID string) error {
	if s.store.Has(compID) {
		return nil
	}
	if s.repo == nil {
		return ErrCompositionNotFound
	}

	c, err := s.repo.FindByID(ctx, compID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCompositionNotFound
		}
		return fmt.Errorf("load composition: %w", err)
	}
	s.store.Put(c)
	return nil
}

// persist writes the current snapshot through to MongoDB. Persistence
// failures are logged, not surfaced: the in-memory state stays authoritative
// for the session, matching how the rest of the service treats optional
// collaborators.
func (s *Service) persist(ctx context.Context, compID string) {
	if s.repo == nil {
		return
	}
	c, err := s.store.Get(compID)
	if err != nil {
		return
	}
	if err := s.repo.Save(ctx, c); err != nil {
		log.Warn().Err(err).Str("composition_id", compID).Msg("failed to persist composition")
	}
}
