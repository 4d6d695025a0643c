package composition

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/workflow"
)

// User-facing merge failure message.
const msgMergeFailed = "Error al generar el video combinado"

// MergeAll walks every unit in ascending index order, reusing existing
// results and generating missing ones one at a time, then submits the full
// ordered segment list to the merge backend in a single call. The walk is
// deliberately sequential: deterministic ordering and fail-fast beat latency
// here. The first failing unit aborts the whole attempt before the merge
// backend is ever contacted.
func (s *Service) MergeAll(ctx context.Context, ownerID, compID string) (model.CompositeResult, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.CompositeResult{}, err
	}

	units, err := s.store.UnitsSorted(compID)
	if err != nil {
		return model.CompositeResult{}, err
	}

	// Precondition stage: nothing is mutated and nothing goes on the wire
	// until every unit could plausibly generate.
	if len(units) < 2 {
		return model.CompositeResult{}, ErrNotEnoughUnits
	}
	for i := range units {
		if err := units[i].ValidateForGeneration(s.requireBackground); err != nil {
			return model.CompositeResult{}, &MergeError{UnitIndex: units[i].Index, Err: err}
		}
	}

	if err := s.store.BeginMerge(compID); err != nil {
		return model.CompositeResult{}, err
	}
	s.persist(ctx, compID)

	segments, mergeErr := s.resolveSegments(ctx, compID, units)
	if mergeErr != nil {
		_ = s.store.FailMerge(compID, mergeErr.Err.Error())
		s.persist(ctx, compID)
		return s.mergeResult(compID), mergeErr
	}

	wireSegments := make([]workflow.MergeSegment, len(segments))
	for i, seg := range segments {
		wireSegments[i] = workflow.MergeSegment{ID: seg.ID, Index: seg.Index, VideoURL: seg.URL}
	}

	mergedURL, err := s.flow.MergeVideos(ctx, wireSegments)
	if err != nil {
		log.Warn().Err(err).Str("composition_id", compID).Msg("merge failed")
		_ = s.store.FailMerge(compID, msgMergeFailed)
		s.persist(ctx, compID)
		return s.mergeResult(compID), err
	}

	if err := s.store.CompleteMerge(compID, segments, mergedURL); err != nil {
		return model.CompositeResult{}, err
	}
	s.persist(ctx, compID)

	log.Info().
		Str("composition_id", compID).
		Int("segments", len(segments)).
		Msg("composite video merged")
	return s.mergeResult(compID), nil
}

// resolveSegments turns every unit into a segment reference, in index order.
// Units that already carry a result are reused untouched; the rest are
// generated on the spot. The first failure stops the walk: later units are
// not attempted.
func (s *Service) resolveSegments(ctx context.Context, compID string, units []model.DialogUnit) ([]model.Segment, *MergeError) {
	segments := make([]model.Segment, 0, len(units))

	for i := range units {
		unit := units[i]

		if unit.Result == nil {
			generated, err := s.generateUnit(ctx, compID, unit.Index)
			if err != nil {
				var vErr *model.ValidationError
				if errors.As(err, &vErr) || errors.Is(err, ErrGenerationInFlight) || generated.LastError == "" {
					return nil, &MergeError{UnitIndex: unit.Index, Err: err}
				}
				return nil, &MergeError{UnitIndex: unit.Index, Err: errors.New(generated.LastError)}
			}
			unit = generated
		}

		segments = append(segments, model.Segment{
			ID:    unit.Result.ID,
			Index: unit.Index,
			URL:   unit.Result.URL,
		})
	}

	return segments, nil
}

func (s *Service) mergeResult(compID string) model.CompositeResult {
	c, err := s.store.Get(compID)
	if err != nil {
		return model.CompositeResult{}
	}
	return c.Merge
}
