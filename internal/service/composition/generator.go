package composition

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/workflow"
)

// User-facing generation failure message. Backend details go to the log, the
// operator gets a stable, retryable message.
const msgGenerationFailed = "Error al generar el video"

// GenerateUnit drives one unit through its generation backend. Preconditions
// are checked before any network traffic; a unit already processing is
// rejected without a call. On success the unit becomes ready with its
// artifact reference; on any failure it becomes failed with a stable message
// while a previous successful result is kept.
func (s *Service) GenerateUnit(ctx context.Context, ownerID, compID string, index int) (model.DialogUnit, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.DialogUnit{}, err
	}
	return s.generateUnit(ctx, compID, index)
}

// generateUnit is the transition shared by the single-unit endpoint and the
// merge coordinator.
func (s *Service) generateUnit(ctx context.Context, compID string, index int) (model.DialogUnit, error) {
	snapshot, err := s.store.BeginGeneration(compID, index, s.requireBackground)
	if err != nil {
		return model.DialogUnit{}, err
	}
	s.persist(ctx, compID)

	artifact, genErr := s.callBackend(ctx, compID, snapshot)
	if genErr != nil {
		log.Warn().
			Err(genErr).
			Str("composition_id", compID).
			Int("unit_index", index).
			Str("mode", snapshot.Mode.String()).
			Msg("unit generation failed")

		unit, ferr := s.store.FailGeneration(compID, index, msgGenerationFailed)
		if ferr != nil {
			return model.DialogUnit{}, ferr
		}
		s.persist(ctx, compID)
		return unit, genErr
	}

	unit, err := s.store.CompleteGeneration(compID, index, model.ArtifactRef{
		ID:  artifact.ID,
		URL: artifact.URL,
	})
	if err != nil {
		return model.DialogUnit{}, err
	}
	s.persist(ctx, compID)

	log.Info().
		Str("composition_id", compID).
		Int("unit_index", index).
		Str("artifact_id", artifact.ID).
		Msg("unit generated")
	return unit, nil
}

// callBackend dispatches to exactly one backend based on the unit's mode.
func (s *Service) callBackend(ctx context.Context, compID string, unit model.DialogUnit) (*workflow.Artifact, error) {
	switch unit.Mode {
	case model.ModeTextToVideo:
		return s.flow.GenerateVideoFromText(ctx,
			unit.Character.String(), unit.Dialog, unit.Background.String())

	case model.ModeVideoToVideo:
		if s.clips == nil {
			return nil, fmt.Errorf("clip storage not configured")
		}
		clip, err := s.clips.Download(ctx, unit.Clip.Key)
		if err != nil {
			return nil, fmt.Errorf("read source clip: %w", err)
		}
		defer clip.Close()

		return s.flow.GenerateVideoFromClip(ctx,
			unit.Character.String(), unit.Background.String(), unit.Clip.Filename, clip)

	default:
		// unreachable after BeginGeneration's validation
		return nil, fmt.Errorf("unsupported generation mode %q", unit.Mode)
	}
}
