package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/messaging"
	"storybook-server/internal/model"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
)

// Pipeline runs one story generation from validated request to persisted
// document, emitting progress on a Broadcaster as it goes. Stages run
// strictly in order; only the illustrating stage tolerates per-page failure.
type Pipeline struct {
	text        service.TextGenerator
	illustrator service.PageIllustrator
	storeOpener repository.StoreOpener
	ownership   repository.StoryOwnershipStore
	notifier    messaging.CompletionNotifier
	cfg         *config.Config
	log         *zap.Logger
}

func New(
	text service.TextGenerator,
	illustrator service.PageIllustrator,
	storeOpener repository.StoreOpener,
	ownership repository.StoryOwnershipStore,
	notifier messaging.CompletionNotifier,
	cfg *config.Config,
	log *zap.Logger,
) *Pipeline {
	return &Pipeline{
		text:        text,
		illustrator: illustrator,
		storeOpener: storeOpener,
		ownership:   ownership,
		notifier:    notifier,
		cfg:         cfg,
		log:         log.Named("pipeline"),
	}
}

// Run executes the full pipeline. It always drives the broadcaster to a
// terminal event and closes it, whatever happens. ownerID may be empty when
// the caller is anonymous.
func (p *Pipeline) Run(ctx context.Context, req model.StoryRequest, ownerID string, b *Broadcaster) {
	defer b.Close()
	start := time.Now()

	b.Publish(Event{Type: EventConnection, Data: ConnectionData{Status: "established"}})

	// Validating.
	b.Publish(Event{Type: EventProgress, Data: ProgressData{
		Step: StepValidating, Status: "started", Message: "Checking your story request",
	}})
	req.Normalize()
	if err := req.Validate(); err != nil {
		p.fail(b, err, "request validation failed")
		return
	}

	// Misconfiguration is fatal before any model call happens.
	if err := p.preflight(); err != nil {
		p.fail(b, err, "preflight check failed")
		return
	}

	store, err := p.storeOpener.Open(ctx)
	if err != nil {
		p.fail(b, err, "store connection failed")
		return
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			p.log.Warn("failed to close story store", zap.Error(cerr))
		}
	}()

	// Writing.
	b.Publish(Event{Type: EventProgress, Data: ProgressData{
		Step: StepWriting, Status: "started", Message: "Writing your story",
	}})
	pages, err := p.text.GeneratePages(ctx, req)
	if err != nil {
		p.fail(b, err, "text generation failed")
		return
	}

	doc := p.assemble(req, pages)
	log := p.log.With(zap.String("story_id", doc.ID))
	log.Info("story text generated", zap.Int("pages", len(pages)))

	// Illustrating. Page failures degrade, never abort.
	total := len(doc.Pages)
	degraded := 0
	for i := range doc.Pages {
		b.Publish(Event{Type: EventProgress, Data: ProgressData{
			Step: StepIllustrating, Status: "in_progress",
			Message: fmt.Sprintf("Illustrating page %d of %d", i+1, total),
			IllustrationProgress: &IllustrationProgress{
				Current: i + 1, Total: total,
				Detail: fmt.Sprintf("Drawing page %d", i+1),
			},
		}})

		pageIndex := i
		url, illErr := p.illustrator.IllustratePage(ctx, service.PageJob{
			StoryID:    doc.ID,
			PageIndex:  i,
			PageText:   doc.Pages[i].Text,
			Characters: doc.Characters,
			Style:      req.StoryStyle,
			AgeRange:   req.AgeRange,
		}, func(dataURI string) {
			b.Publish(Event{Type: EventImagePreview, Data: ImagePreviewData{
				PageIndex: pageIndex, PreviewURL: dataURI,
			}})
		})
		if illErr != nil {
			degraded++
			degradedPagesTotal.Inc()
			log.Warn("page illustration gave up", zap.Int("page", i+1), zap.Error(illErr))
			b.Publish(Event{Type: EventProgress, Data: ProgressData{
				Step: StepIllustrating, Status: "page_failed",
				Message: fmt.Sprintf("Page %d will appear without a picture", i+1),
				IllustrationProgress: &IllustrationProgress{
					Current: i + 1, Total: total,
					Detail: "Illustration unavailable",
				},
			}})
			continue
		}
		doc.Pages[i].ImageURL = &url
	}

	// Saving.
	b.Publish(Event{Type: EventProgress, Data: ProgressData{
		Step: StepSaving, Status: "started", Message: "Saving your storybook",
	}})
	if err := store.Set(ctx, doc, p.cfg.StoryTTL); err != nil {
		p.fail(b, err, "story persist failed")
		return
	}

	p.recordOwnership(ctx, doc, ownerID)
	p.notifyReady(ctx, doc, req.Email)

	runsTotal.WithLabelValues("complete").Inc()
	runDuration.Observe(time.Since(start).Seconds())
	log.Info("story generation complete",
		zap.Int("pages", total),
		zap.Int("degraded_pages", degraded),
		zap.Duration("took", time.Since(start)))

	message := "Your storybook is ready!"
	if degraded > 0 {
		message = fmt.Sprintf("Your storybook is ready! %d of %d pages are missing a picture.", degraded, total)
	}
	b.Publish(Event{Type: EventComplete, Data: CompleteData{
		StoryID: doc.ID,
		Title:   doc.Title,
		Message: message,
	}})
}

// preflight surfaces missing credentials before any external call is made.
func (p *Pipeline) preflight() error {
	if err := p.text.Check(); err != nil {
		return err
	}
	if err := p.illustrator.Check(); err != nil {
		return err
	}
	return p.storeOpener.Check()
}

func (p *Pipeline) assemble(req model.StoryRequest, pages []string) *model.StoryDocument {
	doc := &model.StoryDocument{
		ID:         uuid.NewString(),
		Title:      buildTitle(req),
		Subtitle:   fmt.Sprintf("A story for ages %s", req.AgeRange),
		CreatedAt:  time.Now().UTC(),
		Pages:      make([]model.StoryPage, len(pages)),
		Characters: req.Characters,
	}
	for i, text := range pages {
		doc.Pages[i] = model.StoryPage{Text: text}
	}
	return doc
}

func buildTitle(req model.StoryRequest) string {
	return fmt.Sprintf("The Adventures of %s", req.MainCharacter().Name)
}

func (p *Pipeline) recordOwnership(ctx context.Context, doc *model.StoryDocument, ownerID string) {
	if p.ownership == nil || ownerID == "" {
		return
	}
	err := p.ownership.Record(ctx, repository.OwnedStory{
		StoryID:   doc.ID,
		OwnerID:   ownerID,
		Title:     doc.Title,
		CreatedAt: doc.CreatedAt,
	})
	if err != nil {
		p.log.Warn("failed to record story ownership",
			zap.String("story_id", doc.ID), zap.Error(err))
	}
}

func (p *Pipeline) notifyReady(ctx context.Context, doc *model.StoryDocument, email string) {
	if p.notifier == nil || email == "" {
		return
	}
	err := p.notifier.NotifyStoryReady(ctx, messaging.StoryReadyEvent{
		StoryID: doc.ID,
		Title:   doc.Title,
		Email:   email,
	})
	if err != nil {
		p.log.Warn("failed to publish story ready event",
			zap.String("story_id", doc.ID), zap.Error(err))
	}
}

func (p *Pipeline) fail(b *Broadcaster, err error, logMsg string) {
	runsTotal.WithLabelValues("error").Inc()
	p.log.Error(logMsg, zap.Error(err))
	b.Publish(Event{Type: EventError, Data: ErrorData{
		Message: friendlyMessage(err),
		Details: err.Error(),
	}})
}
