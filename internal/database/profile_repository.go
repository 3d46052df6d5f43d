package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ProfileRepository reads user profile data, currently only push tokens.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates the repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetPushToken returns the user's push token, or "" when the user has no
// profile or no registered token.
func (r *ProfileRepository) GetPushToken(ctx context.Context, userID string) (string, error) {
	var token sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT push_token FROM profiles WHERE id = $1`, userID).Scan(&token)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get push token: %w", err)
	}
	if !token.Valid {
		return "", nil
	}
	return token.String, nil
}
