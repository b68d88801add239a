package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/blogora/blog-api/internal/database"
)

var ErrNoMatch = errors.New("no matching verification code")

// Repository handles verification code persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new verification code for the user. Outstanding codes are
// not limited; every issuance simply adds another candidate.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, code int) (*Record, error) {
	row := &database.EmailVerification{
		UserID: userID,
		OTP:    code,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	return mapRow(row), nil
}

// Find returns the first record matching (userID, code), or ErrNoMatch.
func (r *Repository) Find(ctx context.Context, userID uuid.UUID, code int) (*Record, error) {
	row := new(database.EmailVerification)
	err := r.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Where("otp = ?", code).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}

	return mapRow(row), nil
}

// CountForUser returns how many codes are outstanding for the user.
func (r *Repository) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.EmailVerification)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count verification codes: %w", err)
	}

	return count, nil
}

func mapRow(row *database.EmailVerification) *Record {
	return &Record{
		ID:        row.ID,
		UserID:    row.UserID,
		Code:      row.OTP,
		CreatedAt: row.CreatedAt,
	}
}
