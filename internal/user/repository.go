package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/blogora/blog-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user already registered with this email")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified user
func (r *Repository) Create(ctx context.Context, fullName, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		IsVerified:   false,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkVerifiedAndPurgeOTPs flips the verified flag and deletes every
// outstanding verification code for the user. Both writes commit in one
// transaction so a crash cannot leave a verified user with live codes.
func (r *Repository) MarkVerifiedAndPurgeOTPs(ctx context.Context, userID uuid.UUID) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*database.User)(nil)).
			Set("is_verified = ?", true).
			Set("updated_at = NOW()").
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}

		_, err = tx.NewDelete().
			Model((*database.EmailVerification)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx)
		return err
	})

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to mark user as verified: %w", err)
	}

	return nil
}

// UpdatePassword replaces a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a user account
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ToggleSavedBlog saves the blog on the user's reading list, or removes it
// when already present. Returns true when the blog ended up saved.
func (r *Repository) ToggleSavedBlog(ctx context.Context, userID, blogID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.SavedBlog)(nil)).
		Where("user_id = ?", userID).
		Where("blog_id = ?", blogID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check saved blog: %w", err)
	}

	if exists {
		_, err := r.db.NewDelete().
			Model((*database.SavedBlog)(nil)).
			Where("user_id = ?", userID).
			Where("blog_id = ?", blogID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to unsave blog: %w", err)
		}
		return false, nil
	}

	saved := &database.SavedBlog{UserID: userID, BlogID: blogID}
	_, err = r.db.NewInsert().
		Model(saved).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to save blog: %w", err)
	}

	return true, nil
}

// GetSavedBlogIDs returns the ids on the user's reading list, oldest first
func (r *Repository) GetSavedBlogIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*database.SavedBlog)(nil)).
		Column("blog_id").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved blogs: %w", err)
	}

	return ids, nil
}

// mapDBUserToModel converts the database model to the domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		FullName:     dbu.FullName,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		IsVerified:   dbu.IsVerified,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
