package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freudibili/reeltodo/internal/analyzer"
	"github.com/freudibili/reeltodo/internal/database"
	"github.com/freudibili/reeltodo/internal/dates"
	"github.com/freudibili/reeltodo/internal/enrichment"
	"github.com/freudibili/reeltodo/internal/geocode"
	"github.com/freudibili/reeltodo/internal/metrics"
	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/normalize"
	"github.com/freudibili/reeltodo/internal/push"
	"github.com/freudibili/reeltodo/internal/source"
)

// MetadataFetcher resolves platform metadata for a URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string, hints source.Hints) models.SourceMetadata
}

// AnalyzerService submits a URL to the media analyzer.
type AnalyzerService interface {
	Fetch(ctx context.Context, url string) *analyzer.Response
}

// DateResolver backfills dates for date-requiring categories.
type DateResolver interface {
	ResolveFromText(ctx context.Context, in dates.Input) *dates.Resolution
}

// ActivityStore is the persistence surface the engine depends on.
type ActivityStore interface {
	GetBySourceURL(ctx context.Context, sourceURL string) (*models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Insert(ctx context.Context, a *models.Activity) (created bool, existing *models.Activity, err error)
	Update(ctx context.Context, a *models.Activity) error
	ClaimOwnership(ctx context.Context, activityID, userID string) (bool, error)
	LinkUser(ctx context.Context, userID, activityID string) error
	FindFuzzyMatch(ctx context.Context, title, cityOrLocation, mainDate string) (*models.Activity, error)
	MarkFailed(ctx context.Context, id, message string) error
	Delete(ctx context.Context, id string) error
}

// AuditStore persists the analyzer's raw view for debugging.
type AuditStore interface {
	Upsert(ctx context.Context, meta database.AnalyzerMetadata) error
}

// TokenStore resolves a user's push token.
type TokenStore interface {
	GetPushToken(ctx context.Context, userID string) (string, error)
}

// Engine is the merge & finalize orchestrator behind both ingestion
// endpoints. Each invocation is stateless; all cross-request coordination
// lives in the database.
type Engine struct {
	fetcher    MetadataFetcher
	analyzer   AnalyzerService
	geocoder   geocode.Geocoder
	extractor  enrichment.Extractor
	classifier enrichment.Classifier
	media      enrichment.MediaSignals
	dates      DateResolver
	store      ActivityStore
	audit      AuditStore
	tokens     TokenStore
	notifier   push.Notifier
	metrics    *metrics.Collector
	threshold  float64
	now        func() time.Time
	logger     *slog.Logger
}

// Deps wires an Engine. Optional collaborators (media, classifier, audit,
// tokens, notifier, metrics) may be nil; the engine degrades without them.
type Deps struct {
	Fetcher    MetadataFetcher
	Analyzer   AnalyzerService
	Geocoder   geocode.Geocoder
	Extractor  enrichment.Extractor
	Classifier enrichment.Classifier
	Media      enrichment.MediaSignals
	Dates      DateResolver
	Store      ActivityStore
	Audit      AuditStore
	Tokens     TokenStore
	Notifier   push.Notifier
	Metrics    *metrics.Collector
	Threshold  float64
	Now        func() time.Time
	Logger     *slog.Logger
}

// NewEngine constructs the pipeline engine.
func NewEngine(deps Deps) *Engine {
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = analyzer.DefaultAIThreshold
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		fetcher:    deps.Fetcher,
		analyzer:   deps.Analyzer,
		geocoder:   deps.Geocoder,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		media:      deps.Media,
		dates:      deps.Dates,
		store:      deps.Store,
		audit:      deps.Audit,
		tokens:     deps.Tokens,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		threshold:  threshold,
		now:        now,
		logger:     logger,
	}
}

// AnalyzeRequest is one synchronous ingestion request.
type AnalyzeRequest struct {
	URL    string
	UserID string
	Hints  source.Hints
}

// AnalyzePost runs the full ingestion pipeline for a URL: canonicalize,
// exact dedup, parallel extraction, gate, merge, normalize, quality gate,
// fuzzy dedup, persist. Submitting the same URL twice returns the same row.
func (e *Engine) AnalyzePost(ctx context.Context, req AnalyzeRequest) (*models.Activity, error) {
	canonical, err := source.Canonicalize(req.URL)
	if err != nil {
		e.metrics.Rejection(ErrInvalidURL.Code)
		return nil, ErrInvalidURL
	}

	existing, err := e.store.GetBySourceURL(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		e.metrics.DedupHit("exact")
		e.adoptExisting(ctx, existing, req.UserID)
		return existing, nil
	}

	draft, audit, err := e.extract(ctx, canonical, req.URL, req.Hints)
	if err != nil {
		return nil, err
	}

	// Fuzzy dedup: same date, same place, overlapping title.
	if match := e.findFuzzyDuplicate(ctx, draft); match != nil {
		e.metrics.DedupHit("fuzzy")
		e.adoptExisting(ctx, match, req.UserID)
		return match, nil
	}

	now := e.now()
	draft.ID = uuid.NewString()
	draft.ProcessingStatus = models.ProcessingStatusComplete
	draft.CreatedAt = now
	draft.UpdatedAt = now

	created, winner, err := e.store.Insert(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("persist activity: %w", err)
	}
	if !created {
		// Another request for the same URL won the insert race.
		e.metrics.DedupHit("race")
		e.adoptExisting(ctx, winner, req.UserID)
		return winner, nil
	}

	// The row is inserted unowned; ownership goes through the conditional
	// claim so a user id without a profiles row degrades to an unowned
	// activity instead of failing the insert.
	e.adoptExisting(ctx, draft, req.UserID)

	e.storeAudit(ctx, draft.ID, audit)

	return draft, nil
}

// adoptExisting links the requesting user to an already-persisted activity
// and claims ownership if the row is unowned. Both are best-effort.
func (e *Engine) adoptExisting(ctx context.Context, activity *models.Activity, userID string) {
	if userID == "" {
		return
	}
	if activity.UserID == nil {
		claimed, err := e.store.ClaimOwnership(ctx, activity.ID, userID)
		if err != nil {
			e.logger.Warn("ownership claim failed", "activity_id", activity.ID, "error", err)
		} else if claimed {
			activity.UserID = models.StringPtr(userID)
		}
	}
	if err := e.store.LinkUser(ctx, userID, activity.ID); err != nil {
		e.logger.Warn("failed to link user activity", "activity_id", activity.ID, "error", err)
	}
}

func (e *Engine) findFuzzyDuplicate(ctx context.Context, draft *models.Activity) *models.Activity {
	if draft.MainDate == nil {
		return nil
	}
	place := ""
	if draft.City != nil {
		place = *draft.City
	} else if draft.LocationName != nil {
		place = *draft.LocationName
	}
	if place == "" {
		return nil
	}

	match, err := e.store.FindFuzzyMatch(ctx, draft.Title, place, *draft.MainDate)
	if err != nil {
		e.logger.Warn("fuzzy dedup query failed", "error", err)
		return nil
	}
	return match
}

// extract runs stages 3-11: parallel fetch, conditional media signals,
// no-metadata abort, AI gate, merge, category resolution, date backfill,
// and the content-quality gate. It returns a draft activity ready to
// persist plus the analyzer audit record (nil when the analyzer was silent).
func (e *Engine) extract(ctx context.Context, canonical, rawURL string, hints source.Hints) (*models.Activity, *database.AnalyzerMetadata, error) {
	var (
		meta models.SourceMetadata
		resp *analyzer.Response
		wg   sync.WaitGroup
	)

	// The analyzer call is the long pole; overlap it with the cheap scrape.
	wg.Add(2)
	go func() {
		defer wg.Done()
		meta = e.fetcher.Fetch(ctx, rawURL, hints)
	}()
	go func() {
		defer wg.Done()
		resp = e.analyzer.Fetch(ctx, rawURL)
	}()
	wg.Wait()

	if resp == nil {
		e.metrics.StageFailure("analyzer")
	}

	mapped := analyzer.MapResponse(ctx, resp, canonical, e.geocoder, e.logger)

	transcript := e.mediaSignals(ctx, rawURL, mapped, meta)

	description := joinNonEmpty("\n\n",
		derefStr(mapped.Description),
		derefStr(meta.Description),
		transcript,
	)

	if meta.IsEmpty() && mapped.Activity == nil && description == "" {
		e.metrics.Rejection(ErrNoContent.Code)
		return nil, nil, ErrNoContent
	}

	invoke := analyzer.ShouldInvokeAI(mapped.Activity, e.threshold)
	e.metrics.GateDecision(invoke)

	var ai *models.ExtractedActivity
	if invoke {
		input := enrichment.ExtractionInput{
			Title:       firstNonEmpty(derefStr(meta.Title), analyzerTitle(mapped.Activity)),
			Description: description,
			ImageURL:    firstNonEmpty(derefStr(meta.ImageURL), analyzerImage(mapped.Activity)),
			Author:      firstNonEmpty(derefStr(meta.Author), analyzerCreator(mapped.Activity)),
			SourceURL:   canonical,
		}
		var err error
		ai, err = e.extractor.AnalyzeActivity(ctx, input)
		if err != nil {
			// By the time the extractor runs it is the only remaining
			// extraction path; its failure fails the request.
			return nil, nil, fmt.Errorf("ai extraction: %w", err)
		}
	}

	m := mergeSources(mapped.Activity, ai, meta)
	category := e.resolveCategory(ctx, m, description)

	if category.RequiresDate() && len(m.activity.Dates) == 0 && e.dates != nil {
		e.backfillDates(ctx, &m, description)
	}

	confidence := resolveConfidence(m)

	if category == models.CategoryOther || confidence < minConfidence {
		e.metrics.Rejection(ErrUnsuitableContent.Code)
		return nil, nil, ErrUnsuitableContent
	}

	a := &models.Activity{
		SourceURL:         canonical,
		Title:             deriveTitle(m),
		Category:          category,
		Tags:              m.activity.Tags,
		Creator:           m.activity.Creator,
		ImageURL:          m.activity.ImageURL,
		Confidence:        confidence,
		LocationName:      m.activity.LocationName,
		Address:           m.activity.Address,
		City:              m.activity.City,
		Country:           m.activity.Country,
		Latitude:          m.activity.Latitude,
		Longitude:         m.activity.Longitude,
		AnalyzerLocations: m.activity.Locations,
		Dates:             m.activity.Dates,
	}
	if main, _ := dates.ClassifyMain(a.Dates, e.now()); main != "" {
		a.MainDate = &main
	}
	confirmationFlags(a)

	return a, buildAudit(canonical, resp), nil
}

// mediaSignals is the explicit cost-avoidance branch: transcript/captioning
// run only when the analyzer produced nothing and no thumbnail is otherwise
// available.
func (e *Engine) mediaSignals(ctx context.Context, rawURL string, mapped analyzer.Mapped, meta models.SourceMetadata) string {
	if e.media == nil || mapped.Activity != nil || meta.ImageURL != nil {
		return ""
	}

	text, err := e.media.Transcribe(ctx, rawURL)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if err != nil {
		e.metrics.StageFailure("transcribe")
		e.logger.Warn("transcription failed", "url", rawURL, "error", err)
	}

	caption, err := e.media.CaptionImage(ctx, rawURL)
	if err != nil {
		e.metrics.StageFailure("caption")
		e.logger.Warn("image captioning failed", "url", rawURL, "error", err)
		return ""
	}
	return caption
}

// resolveCategory applies the category resolution order: normalized merged
// category, then the AI category, then keyword inference, then the AI
// classifier, then "other".
func (e *Engine) resolveCategory(ctx context.Context, m merged, description string) models.Category {
	if m.activity.Category != nil {
		if c, ok := normalize.Category(*m.activity.Category); ok && c != models.CategoryOther {
			return c
		}
	}
	if m.aiCategory != nil {
		if c, ok := normalize.Category(*m.aiCategory); ok && c != models.CategoryOther {
			return c
		}
	}

	signals := normalize.InferenceInput{
		Title:        derefStr(m.activity.Title),
		Description:  description,
		Tags:         m.activity.Tags,
		LocationName: derefStr(m.activity.LocationName),
	}
	if c, ok := normalize.InferCategory(signals); ok && c != models.CategoryOther {
		return c
	}

	if e.classifier != nil {
		c, err := e.classifier.ClassifyCategory(ctx, enrichment.ClassifyInput{
			Title:        signals.Title,
			Description:  signals.Description,
			Tags:         signals.Tags,
			LocationName: signals.LocationName,
		})
		if err != nil {
			e.metrics.StageFailure("classifier")
			e.logger.Warn("category classification failed", "error", err)
		} else if c != "" && c != models.CategoryOther {
			return c
		}
	}

	return models.CategoryOther
}

func (e *Engine) backfillDates(ctx context.Context, m *merged, description string) {
	var artists []string
	if m.activity.Creator != nil {
		artists = append(artists, *m.activity.Creator)
	}
	in := dates.Input{
		Text:    joinNonEmpty(" ", derefStr(m.activity.Title), description, strings.Join(m.activity.Tags, " ")),
		Venue:   derefStr(m.activity.LocationName),
		City:    derefStr(m.activity.City),
		Artists: artists,
	}
	if res := e.dates.ResolveFromText(ctx, in); res != nil {
		m.activity.Dates = res.Dates
	}
}

func (e *Engine) storeAudit(ctx context.Context, activityID string, audit *database.AnalyzerMetadata) {
	if e.audit == nil || audit == nil {
		return
	}
	audit.ActivityID = activityID
	if err := e.audit.Upsert(ctx, *audit); err != nil {
		// Audit records are debugging aid; losing one never fails a request.
		e.logger.Warn("failed to store analyzer metadata", "activity_id", activityID, "error", err)
	}
}

func buildAudit(canonical string, resp *analyzer.Response) *database.AnalyzerMetadata {
	if resp == nil {
		return nil
	}
	keyInfo := map[string]string{}
	if resp.KeyInfo.Price != "" {
		keyInfo["price"] = resp.KeyInfo.Price
	}
	if resp.KeyInfo.Transport != "" {
		keyInfo["transport"] = resp.KeyInfo.Transport
	}
	if resp.KeyInfo.BestTime != "" {
		keyInfo["best_time"] = resp.KeyInfo.BestTime
	}
	if resp.KeyInfo.Duration != "" {
		keyInfo["duration"] = resp.KeyInfo.Duration
	}
	return &database.AnalyzerMetadata{
		Platform:       string(source.Detect(canonical)),
		RawTitle:       resp.Title,
		RawDescription: resp.Description,
		Thumbnail:      resp.Thumbnail,
		KeyInfo:        keyInfo,
		RawLocations:   resp.Locations,
		RawDates:       resp.Dates,
	}
}

func analyzerTitle(a *models.AnalyzerActivity) string {
	if a == nil {
		return ""
	}
	return derefStr(a.Title)
}

func analyzerImage(a *models.AnalyzerActivity) string {
	if a == nil {
		return ""
	}
	return derefStr(a.ImageURL)
}

func analyzerCreator(a *models.AnalyzerActivity) string {
	if a == nil {
		return ""
	}
	return derefStr(a.Creator)
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
