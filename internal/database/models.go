package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database model for the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FullName     string    `bun:"full_name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsVerified   bool      `bun:"is_verified,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// EmailVerification is one outstanding OTP issued to a user. A user may have
// any number of outstanding rows; all are purged together on success.
type EmailVerification struct {
	bun.BaseModel `bun:"table:email_verifications,alias:ev"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	OTP       int       `bun:"otp,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
}

// Blog is the database model for blog posts
type Blog struct {
	bun.BaseModel `bun:"table:blogs,alias:b"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Title         string    `bun:"title,notnull"`
	Description   string    `bun:"description,notnull"`
	CategoryTitle string    `bun:"category_title,notnull"`
	ImageKey      string    `bun:"image_key,notnull"`
	CreatorName   string    `bun:"creator_name,notnull"`
	CreatorEmail  string    `bun:"creator_email,notnull"`
	CreatedBy     uuid.UUID `bun:"created_by,notnull,type:uuid"`
	Views         int64     `bun:"views,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:now()"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:now()"`
}

// BlogLike is one user's like on one blog
type BlogLike struct {
	bun.BaseModel `bun:"table:blog_likes,alias:bl"`

	BlogID    uuid.UUID `bun:"blog_id,pk,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
}

// SavedBlog is one blog saved to a user's reading list
type SavedBlog struct {
	bun.BaseModel `bun:"table:user_saved_blogs,alias:sb"`

	UserID    uuid.UUID `bun:"user_id,pk,type:uuid"`
	BlogID    uuid.UUID `bun:"blog_id,pk,type:uuid"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:now()"`
}
