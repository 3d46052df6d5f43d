package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// AnalyzerMetadata is the denormalized audit record kept alongside an
// activity: the analyzer's raw view of the post before merging.
type AnalyzerMetadata struct {
	ActivityID     string
	Platform       string
	RawTitle       string
	RawDescription string
	Thumbnail      string
	KeyInfo        map[string]string
	RawLocations   any
	RawDates       []string
}

// AnalyzerMetadataRepository persists analyzer audit records.
type AnalyzerMetadataRepository struct {
	db *sql.DB
}

// NewAnalyzerMetadataRepository creates the repository.
func NewAnalyzerMetadataRepository(db *sql.DB) *AnalyzerMetadataRepository {
	return &AnalyzerMetadataRepository{db: db}
}

// Upsert writes the audit record for an activity, replacing any previous
// one. Callers treat failures as log-only; the record is debugging aid,
// not pipeline state.
func (r *AnalyzerMetadataRepository) Upsert(ctx context.Context, meta AnalyzerMetadata) error {
	keyInfoJSON, err := json.Marshal(meta.KeyInfo)
	if err != nil {
		return fmt.Errorf("marshal key info: %w", err)
	}
	locationsJSON, err := json.Marshal(meta.RawLocations)
	if err != nil {
		return fmt.Errorf("marshal raw locations: %w", err)
	}
	datesJSON, err := json.Marshal(meta.RawDates)
	if err != nil {
		return fmt.Errorf("marshal raw dates: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO activity_analyzer_metadata (
			activity_id, platform, raw_title, raw_description, thumbnail,
			key_info, raw_locations, raw_dates
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (activity_id) DO UPDATE SET
			platform = EXCLUDED.platform,
			raw_title = EXCLUDED.raw_title,
			raw_description = EXCLUDED.raw_description,
			thumbnail = EXCLUDED.thumbnail,
			key_info = EXCLUDED.key_info,
			raw_locations = EXCLUDED.raw_locations,
			raw_dates = EXCLUDED.raw_dates,
			updated_at = NOW()`,
		meta.ActivityID, meta.Platform, meta.RawTitle, meta.RawDescription, meta.Thumbnail,
		keyInfoJSON, locationsJSON, datesJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert analyzer metadata: %w", err)
	}
	return nil
}
