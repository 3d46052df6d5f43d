package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/freudibili/reeltodo/internal/models"
	"github.com/freudibili/reeltodo/internal/source"
)

const notifyTimeout = 10 * time.Second

// ProcessRequest asks for a previously created placeholder activity to be
// fully extracted. URL and UserID override the stored values when set.
type ProcessRequest struct {
	ActivityID string
	URL        string
	UserID     string
	Hints      source.Hints
}

// ProcessResult reports the outcome of an asynchronous extraction. Exactly
// one of Activity or Err is set; Deleted says whether a failed placeholder
// was removed or only marked failed.
type ProcessResult struct {
	Activity *models.Activity
	Deleted  bool
	Err      string
}

// ProcessActivity re-runs the extraction pipeline against an existing row.
// Content rejections and infrastructure failures do not leave the row in
// the processing state: the row is deleted, or marked failed when the
// delete itself fails. The outcome is pushed to the owning user either way.
func (e *Engine) ProcessActivity(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	row, err := e.store.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	if row == nil {
		return nil, ErrActivityNotFound
	}

	rawURL := req.URL
	if rawURL == "" {
		rawURL = row.SourceURL
	}
	userID := req.UserID
	if userID == "" && row.UserID != nil {
		userID = *row.UserID
	}

	activity, err := e.processExtraction(ctx, row, rawURL, userID, req.Hints)
	if err != nil {
		e.logger.Error("activity processing failed",
			"activity_id", row.ID,
			"url", rawURL,
			"error", err)
		deleted := e.discardFailed(ctx, row.ID, err)
		e.notify(userID, "Activity could not be saved",
			"We could not extract an activity from your link.",
			map[string]string{"activity_id": row.ID, "status": "failed"})
		return &ProcessResult{Deleted: deleted, Err: err.Error()}, nil
	}

	e.notify(userID, "Activity ready", activity.Title,
		map[string]string{"activity_id": activity.ID, "status": "complete"})
	return &ProcessResult{Activity: activity}, nil
}

// processExtraction is the fallible core of ProcessActivity. A panic in
// any stage is converted to an error so the recovery path still runs.
func (e *Engine) processExtraction(ctx context.Context, row *models.Activity, rawURL, userID string, hints source.Hints) (activity *models.Activity, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.metrics.StageFailure("panic")
			activity = nil
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()

	canonical, cerr := source.Canonicalize(rawURL)
	if cerr != nil {
		return nil, ErrInvalidURL
	}

	draft, audit, xerr := e.extract(ctx, canonical, rawURL, hints)
	if xerr != nil {
		return nil, xerr
	}

	// Same fuzzy dedup as the synchronous path: an extraction matching an
	// already-saved activity adopts that row and discards the placeholder.
	if match := e.findFuzzyDuplicate(ctx, draft); match != nil && match.ID != row.ID {
		e.metrics.DedupHit("fuzzy")
		e.adoptExisting(ctx, match, userID)
		if derr := e.store.Delete(ctx, row.ID); derr != nil {
			e.logger.Warn("failed to remove duplicate placeholder", "activity_id", row.ID, "error", derr)
		}
		return match, nil
	}

	draft.ID = row.ID
	draft.UserID = row.UserID
	draft.ProcessingStatus = models.ProcessingStatusComplete
	draft.CreatedAt = row.CreatedAt
	draft.UpdatedAt = e.now()

	if uerr := e.store.Update(ctx, draft); uerr != nil {
		return nil, fmt.Errorf("persist processed activity: %w", uerr)
	}

	e.adoptExisting(ctx, draft, userID)
	e.storeAudit(ctx, draft.ID, audit)

	return draft, nil
}

// discardFailed removes a placeholder whose extraction failed, falling back
// to marking it failed when the delete does not go through. Returns whether
// the row was deleted.
func (e *Engine) discardFailed(ctx context.Context, activityID string, cause error) bool {
	err := e.store.Delete(ctx, activityID)
	if err == nil {
		return true
	}
	e.logger.Error("failed to delete failed activity", "activity_id", activityID, "error", err)

	if err := e.store.MarkFailed(ctx, activityID, cause.Error()); err != nil {
		e.logger.Error("failed to mark activity failed", "activity_id", activityID, "error", err)
	}
	return false
}

// notify resolves the user's push token and sends a notification. Delivery
// runs on a short detached context so a slow push provider cannot hold the
// request open.
func (e *Engine) notify(userID, title, body string, data map[string]string) {
	if e.notifier == nil || e.tokens == nil || userID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		token, err := e.tokens.GetPushToken(ctx, userID)
		if err != nil {
			e.logger.Warn("push token lookup failed", "user_id", userID, "error", err)
			return
		}
		if err := e.notifier.Notify(ctx, token, title, body, data); err != nil {
			e.logger.Warn("push delivery failed", "user_id", userID, "error", err)
		}
	}()
}
