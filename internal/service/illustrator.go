package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/media"
	"storybook-server/internal/model"
	"storybook-server/internal/storage"
)

// PageJob carries everything needed to illustrate one page.
type PageJob struct {
	StoryID    string
	PageIndex  int
	PageText   string
	Characters []model.Character
	Style      string
	AgeRange   string
}

// PageIllustrator generates, previews, and durably publishes one page image.
// The preview callback receives an inline data URI before the upload happens,
// so clients see the picture while the blob store is still working.
type PageIllustrator interface {
	IllustratePage(ctx context.Context, job PageJob, preview func(dataURI string)) (string, error)
	Check() error
}

type illustrator struct {
	client       ImageClient
	publisher    storage.BlobPublisher
	fetcher      *media.Fetcher
	retry        RetryPolicy
	imageTimeout time.Duration
	log          *zap.Logger
}

func NewIllustrator(cfg *config.Config, client ImageClient, publisher storage.BlobPublisher, fetcher *media.Fetcher, log *zap.Logger) PageIllustrator {
	return &illustrator{
		client:    client,
		publisher: publisher,
		fetcher:   fetcher,
		retry: RetryPolicy{
			MaxAttempts: cfg.ImageMaxAttempts,
			Delay:       LinearBackoff(cfg.ImageRetryDelay),
		},
		imageTimeout: cfg.ImageTimeout,
		log:          log.Named("illustrator"),
	}
}

func (s *illustrator) Check() error {
	if err := s.client.Check(); err != nil {
		return err
	}
	return s.publisher.Check()
}

// referenceImages downloads character photos. A failed download is logged
// and skipped; the illustration proceeds without that reference.
func (s *illustrator) referenceImages(ctx context.Context, chars []model.Character) []ReferenceImage {
	var refs []ReferenceImage
	for _, ch := range chars {
		if ch.UploadedPhotoURL == "" {
			continue
		}
		img, err := s.fetcher.Fetch(ctx, ch.UploadedPhotoURL)
		if err != nil {
			s.log.Warn("reference photo unavailable",
				zap.String("character", ch.Name), zap.Error(err))
			continue
		}
		refs = append(refs, ReferenceImage{Data: img.Data, MIMEType: img.MIMEType})
	}
	return refs
}

// IllustratePage runs the full generate-preview-publish sequence for one
// page. An upload failure spends an attempt just like a generation failure;
// each attempt uploads under a fresh object name so retries never collide.
func (s *illustrator) IllustratePage(ctx context.Context, job PageJob, preview func(dataURI string)) (string, error) {
	prompt := BuildPagePrompt(job.PageText, job.Style, job.AgeRange, job.Characters)
	refs := s.referenceImages(ctx, job.Characters)
	log := s.log.With(zap.String("story_id", job.StoryID), zap.Int("page", job.PageIndex+1))

	var publicURL string
	start := time.Now()
	err := s.retry.Do(ctx, func(attemptCtx context.Context) error {
		genCtx, cancel := context.WithTimeout(attemptCtx, s.imageTimeout)
		img, genErr := s.client.Generate(genCtx, prompt, refs)
		cancel()
		if genErr != nil {
			illustrationAttemptsTotal.WithLabelValues("generation_failure").Inc()
			log.Warn("illustration attempt failed", zap.Error(genErr))
			return genErr
		}

		if preview != nil {
			preview(fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data)))
		}

		path := fmt.Sprintf("stories/%s/page-%d-%s%s", job.StoryID, job.PageIndex+1, uuid.NewString(), extensionFor(img.MIMEType))
		url, pubErr := s.publisher.Publish(attemptCtx, path, img.Data, img.MIMEType)
		if pubErr != nil {
			illustrationAttemptsTotal.WithLabelValues("upload_failure").Inc()
			log.Warn("illustration upload failed", zap.Error(pubErr))
			return pubErr
		}
		illustrationAttemptsTotal.WithLabelValues("success").Inc()
		publicURL = url
		return nil
	})
	if err != nil {
		return "", err
	}
	illustrationDuration.Observe(time.Since(start).Seconds())
	log.Info("page illustrated", zap.Duration("took", time.Since(start)))
	return publicURL, nil
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
