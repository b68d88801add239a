package blog

import (
	"time"

	"github.com/google/uuid"
)

type Blog struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CategoryTitle string    `json:"categoryTitle"`
	ImageKey      string    `json:"-"`
	ImageURL      string    `json:"imgUrl"` // presigned, filled at response time
	CreatorName   string    `json:"nameOfCreator"`
	CreatorEmail  string    `json:"emailOfCreator"`
	CreatedBy     uuid.UUID `json:"createdBy"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Liker is a user who liked a blog, public fields only
type Liker struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}
