package blog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/blogora/blog-api/internal/database"
)

var ErrNotFound = errors.New("blog not found")

// Repository handles blog persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new blog post
func (r *Repository) Create(ctx context.Context, b *Blog) (*Blog, error) {
	row := &database.Blog{
		Title:         b.Title,
		Description:   b.Description,
		CategoryTitle: b.CategoryTitle,
		ImageKey:      b.ImageKey,
		CreatorName:   b.CreatorName,
		CreatorEmail:  b.CreatorEmail,
		CreatedBy:     b.CreatedBy,
	}

	_, err := r.db.NewInsert().
		Model(row).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}

	return mapDBBlogToModel(row), nil
}

// GetByID retrieves one blog
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	row := new(database.Blog)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}

	return mapDBBlogToModel(row), nil
}

// GetAll retrieves every blog, newest first
func (r *Repository) GetAll(ctx context.Context) ([]*Blog, error) {
	var rows []database.Blog
	err := r.db.NewSelect().
		Model(&rows).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}

	return mapDBBlogsToModels(rows), nil
}

// GetByCreator retrieves all blogs created by one user, newest first
func (r *Repository) GetByCreator(ctx context.Context, userID uuid.UUID) ([]*Blog, error) {
	var rows []database.Blog
	err := r.db.NewSelect().
		Model(&rows).
		Where("created_by = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user blogs: %w", err)
	}

	return mapDBBlogsToModels(rows), nil
}

// GetByCategory retrieves blogs whose category matches case-insensitively
func (r *Repository) GetByCategory(ctx context.Context, category string) ([]*Blog, error) {
	var rows []database.Blog
	err := r.db.NewSelect().
		Model(&rows).
		Where("category_title ILIKE ?", "%"+category+"%").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs by category: %w", err)
	}

	return mapDBBlogsToModels(rows), nil
}

// Search matches the term against title, description, and category
func (r *Repository) Search(ctx context.Context, term string) ([]*Blog, error) {
	pattern := "%" + term + "%"

	var rows []database.Blog
	err := r.db.NewSelect().
		Model(&rows).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("title ILIKE ?", pattern).
				WhereOr("description ILIKE ?", pattern).
				WhereOr("category_title ILIKE ?", pattern)
		}).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search blogs: %w", err)
	}

	return mapDBBlogsToModels(rows), nil
}

// Update replaces the mutable fields of a blog
func (r *Repository) Update(ctx context.Context, b *Blog) (*Blog, error) {
	row := new(database.Blog)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", b.ID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get blog for update: %w", err)
	}

	row.Title = b.Title
	row.Description = b.Description
	row.CategoryTitle = b.CategoryTitle
	row.ImageKey = b.ImageKey

	_, err = r.db.NewUpdate().
		Model(row).
		Column("title", "description", "category_title", "image_key").
		Set("updated_at = NOW()").
		Where("id = ?", b.ID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update blog: %w", err)
	}

	return mapDBBlogToModel(row), nil
}

// Delete removes a blog
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Blog)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
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

// ToggleLike likes the blog for the user, or removes the like when it is
// already there. Returns true when the blog ended up liked.
func (r *Repository) ToggleLike(ctx context.Context, blogID, userID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.BlogLike)(nil)).
		Where("blog_id = ?", blogID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}

	if exists {
		_, err := r.db.NewDelete().
			Model((*database.BlogLike)(nil)).
			Where("blog_id = ?", blogID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to remove like: %w", err)
		}
		return false, nil
	}

	like := &database.BlogLike{BlogID: blogID, UserID: userID}
	_, err = r.db.NewInsert().
		Model(like).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	return true, nil
}

// GetLikers lists the users who liked a blog
func (r *Repository) GetLikers(ctx context.Context, blogID uuid.UUID) ([]Liker, error) {
	var likers []Liker
	err := r.db.NewSelect().
		Model((*database.BlogLike)(nil)).
		ColumnExpr("u.id, u.full_name, u.email").
		Join("JOIN users AS u ON u.id = bl.user_id").
		Where("bl.blog_id = ?", blogID).
		Order("bl.created_at ASC").
		Scan(ctx, &likers)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}

	return likers, nil
}

// IncrementViews bumps the view counter by one
func (r *Repository) IncrementViews(ctx context.Context, blogID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.Blog)(nil)).
		Set("views = views + 1").
		Where("id = ?", blogID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
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

func mapDBBlogToModel(row *database.Blog) *Blog {
	return &Blog{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		CategoryTitle: row.CategoryTitle,
		ImageKey:      row.ImageKey,
		CreatorName:   row.CreatorName,
		CreatorEmail:  row.CreatorEmail,
		CreatedBy:     row.CreatedBy,
		Views:         row.Views,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func mapDBBlogsToModels(rows []database.Blog) []*Blog {
	blogs := make([]*Blog, 0, len(rows))
	for i := range rows {
		blogs = append(blogs, mapDBBlogToModel(&rows[i]))
	}
	return blogs
}
