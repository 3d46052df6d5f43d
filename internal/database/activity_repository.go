package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/freudibili/reeltodo/internal/models"
)

// ActivityRepository persists activities and their child rows.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a repository backed by the given pool.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `
	id, source_url, title, category, tags, creator, image_url, confidence,
	location_name, address, city, country, latitude, longitude,
	analyzer_locations, main_date,
	needs_location_confirmation, needs_date_confirmation,
	processing_status, processing_step, processing_error,
	user_id, created_at, updated_at`

// GetBySourceURL looks up an activity by its canonical source URL.
// Returns nil when no row exists.
func (r *ActivityRepository) GetBySourceURL(ctx context.Context, sourceURL string) (*models.Activity, error) {
	query := `SELECT` + activityColumns + ` FROM activities WHERE source_url = $1`
	return r.getOne(ctx, query, sourceURL)
}

// GetByID looks up an activity by ID. Returns nil when no row exists.
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	query := `SELECT` + activityColumns + ` FROM activities WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *ActivityRepository) getOne(ctx context.Context, query string, args ...any) (*models.Activity, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	activity, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadDates(ctx, activity); err != nil {
		return nil, err
	}
	return activity, nil
}

// Insert creates the activity and its child date rows. The unique index on
// source_url makes concurrent submissions of the same URL race-safe:
// when the insert conflicts, Insert returns created=false along with the
// row that won the race.
func (r *ActivityRepository) Insert(ctx context.Context, a *models.Activity) (created bool, existing *models.Activity, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	locationsJSON, err := marshalLocations(a.AnalyzerLocations)
	if err != nil {
		return false, nil, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO activities (
			id, source_url, title, category, tags, creator, image_url, confidence,
			location_name, address, city, country, latitude, longitude,
			analyzer_locations, main_date,
			needs_location_confirmation, needs_date_confirmation,
			processing_status, processing_step, processing_error,
			user_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
		ON CONFLICT (source_url) DO NOTHING`,
		a.ID, a.SourceURL, a.Title, a.Category, pq.Array(a.Tags), a.Creator, a.ImageURL, a.Confidence,
		a.LocationName, a.Address, a.City, a.Country, a.Latitude, a.Longitude,
		locationsJSON, a.MainDate,
		a.NeedsLocationConfirmation, a.NeedsDateConfirmation,
		a.ProcessingStatus, a.ProcessingStep, a.ProcessingError,
		a.UserID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return false, nil, fmt.Errorf("insert activity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, err
	}
	if affected == 0 {
		// Lost the race; hand back the existing row as the dedup result.
		winner, err := r.GetBySourceURL(ctx, a.SourceURL)
		if err != nil {
			return false, nil, err
		}
		if winner == nil {
			return false, nil, fmt.Errorf("insert conflict but no existing row for %s", a.SourceURL)
		}
		return false, winner, nil
	}

	if err := insertDatesTx(ctx, tx, a.ID, a.Dates); err != nil {
		return false, nil, err
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("commit insert: %w", err)
	}
	return true, nil, nil
}

// Update rewrites the extracted fields of an existing activity, replacing
// its date child rows. Used by the async processing path.
func (r *ActivityRepository) Update(ctx context.Context, a *models.Activity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	locationsJSON, err := marshalLocations(a.AnalyzerLocations)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE activities SET
			title = $2, category = $3, tags = $4, creator = $5, image_url = $6,
			confidence = $7, location_name = $8, address = $9, city = $10,
			country = $11, latitude = $12, longitude = $13,
			analyzer_locations = $14, main_date = $15,
			needs_location_confirmation = $16, needs_date_confirmation = $17,
			processing_status = $18, processing_step = $19, processing_error = $20,
			updated_at = $21
		WHERE id = $1`,
		a.ID, a.Title, a.Category, pq.Array(a.Tags), a.Creator, a.ImageURL,
		a.Confidence, a.LocationName, a.Address, a.City,
		a.Country, a.Latitude, a.Longitude,
		locationsJSON, a.MainDate,
		a.NeedsLocationConfirmation, a.NeedsDateConfirmation,
		a.ProcessingStatus, a.ProcessingStep, a.ProcessingError,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity_dates WHERE activity_id = $1`, a.ID); err != nil {
		return fmt.Errorf("clear activity dates: %w", err)
	}
	if err := insertDatesTx(ctx, tx, a.ID, a.Dates); err != nil {
		return err
	}

	return tx.Commit()
}

// ClaimOwnership assigns user_id to an unowned activity. The conditional
// WHERE guard keeps concurrent claims from stealing another user's row.
// Returns true when this call performed the claim.
func (r *ActivityRepository) ClaimOwnership(ctx context.Context, activityID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE activities SET user_id = $2, updated_at = NOW() WHERE id = $1 AND user_id IS NULL`,
		activityID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("claim ownership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// LinkUser upserts the user-activity link row.
func (r *ActivityRepository) LinkUser(ctx context.Context, userID, activityID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_activities (user_id, activity_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, activity_id) DO NOTHING`,
		userID, activityID,
	)
	if err != nil {
		return fmt.Errorf("link user activity: %w", err)
	}
	return nil
}

// FindFuzzyMatch looks for an existing activity sharing the exact main
// date, an ILIKE city/location match, and an ILIKE substring match on the
// first 80 characters of the title. Best-effort: the first hit wins.
func (r *ActivityRepository) FindFuzzyMatch(ctx context.Context, title, cityOrLocation, mainDate string) (*models.Activity, error) {
	prefix := title
	if len(prefix) > 80 {
		prefix = prefix[:80]
	}
	titlePattern := "%" + escapeLike(prefix) + "%"
	placePattern := escapeLike(strings.TrimSpace(cityOrLocation))

	query := `
		SELECT` + activityColumns + `
		FROM activities a
		WHERE EXISTS (
			SELECT 1 FROM activity_dates d WHERE d.activity_id = a.id AND d.date = $1
		)
		AND (a.city ILIKE $2 OR a.location_name ILIKE $2)
		AND a.title ILIKE $3
		LIMIT 1`

	return r.getOne(ctx, query, mainDate, placePattern, titlePattern)
}

// MarkFailed flags the activity as failed with an error message.
func (r *ActivityRepository) MarkFailed(ctx context.Context, id, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE activities
		SET processing_status = $2, processing_error = $3, updated_at = NOW()
		WHERE id = $1`,
		id, models.ProcessingStatusFailed, message,
	)
	if err != nil {
		return fmt.Errorf("mark activity failed: %w", err)
	}
	return nil
}

// Delete removes the activity; child rows cascade.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func insertDatesTx(ctx context.Context, tx *sql.Tx, activityID string, dates []string) error {
	for _, d := range dates {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activity_dates (id, activity_id, date)
			VALUES (gen_random_uuid(), $1, $2)
			ON CONFLICT (activity_id, date) DO NOTHING`,
			activityID, d,
		)
		if err != nil {
			return fmt.Errorf("insert activity date %s: %w", d, err)
		}
	}
	return nil
}

func (r *ActivityRepository) loadDates(ctx context.Context, a *models.Activity) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date FROM activity_dates WHERE activity_id = $1 ORDER BY date ASC`, a.ID)
	if err != nil {
		return fmt.Errorf("load activity dates: %w", err)
	}
	defer rows.Close()

	a.Dates = []string{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return err
		}
		a.Dates = append(a.Dates, d.Format("2006-01-02"))
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	var (
		a             models.Activity
		tags          pq.StringArray
		locationsJSON []byte
		mainDate      sql.NullTime
	)

	err := row.Scan(
		&a.ID, &a.SourceURL, &a.Title, &a.Category, &tags, &a.Creator, &a.ImageURL, &a.Confidence,
		&a.LocationName, &a.Address, &a.City, &a.Country, &a.Latitude, &a.Longitude,
		&locationsJSON, &mainDate,
		&a.NeedsLocationConfirmation, &a.NeedsDateConfirmation,
		&a.ProcessingStatus, &a.ProcessingStep, &a.ProcessingError,
		&a.UserID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Tags = []string(tags)
	if len(locationsJSON) > 0 {
		if err := json.Unmarshal(locationsJSON, &a.AnalyzerLocations); err != nil {
			return nil, fmt.Errorf("unmarshal analyzer locations: %w", err)
		}
	}
	if mainDate.Valid {
		iso := mainDate.Time.Format("2006-01-02")
		a.MainDate = &iso
	}
	return &a, nil
}

func marshalLocations(locations []models.AnalyzerLocation) ([]byte, error) {
	if len(locations) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(locations)
	if err != nil {
		return nil, fmt.Errorf("marshal analyzer locations: %w", err)
	}
	return data, nil
}

// escapeLike escapes the LIKE wildcards in user-derived match text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
