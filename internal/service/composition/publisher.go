package composition

import (
	"context"

	"github.com/rs/zerolog/log"

	model "contrapunto/internal/model/composition"
	"contrapunto/internal/pkg/workflow"
)

// User-facing publish failure message.
const msgPublishFailed = "Error al publicar el video"

// Publish submits the merged composite to the publishing endpoint. It
// requires a ready merge whose URL still passes validation; publishing is
// at-most-once per successful merge because a new merge resets the publish
// record.
func (s *Service) Publish(ctx context.Context, ownerID, compID string) (model.PublishRecord, error) {
	if _, err := s.GetComposition(ctx, ownerID, compID); err != nil {
		return model.PublishRecord{}, err
	}

	mergedURL, title, summary, err := s.store.BeginPublish(compID)
	if err != nil {
		return model.PublishRecord{}, err
	}
	if !workflow.IsValidVideoURL(mergedURL) {
		_ = s.store.FailPublish(compID, msgPublishFailed)
		s.persist(ctx, compID)
		return s.publishRecord(compID), ErrMergeNotReady
	}
	s.persist(ctx, compID)

	publishedURL, err := s.flow.PostVideo(ctx, title, summary, mergedURL)
	if err != nil {
		log.Warn().Err(err).Str("composition_id", compID).Msg("publish failed")
		_ = s.store.FailPublish(compID, msgPublishFailed)
		s.persist(ctx, compID)
		return s.publishRecord(compID), err
	}

	if err := s.store.CompletePublish(compID, publishedURL); err != nil {
		return model.PublishRecord{}, err
	}
	s.persist(ctx, compID)

	log.Info().
		Str("composition_id", compID).
		Str("published_url", publishedURL).
		Msg("composite video published")
	return s.publishRecord(compID), nil
}

func (s *Service) publishRecord(compID string) model.PublishRecord {
	c, err := s.store.Get(compID)
	if err != nil {
		return model.PublishRecord{}
	}
	return c.Publish
}
