package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// A viewer counts at most once per blog per window.
const viewWindow = 24 * time.Hour

// ViewTracker deduplicates view counting per viewer using Redis.
type ViewTracker struct {
	client *redis.Client
}

func NewViewTracker(client *redis.Client) *ViewTracker {
	return &ViewTracker{client: client}
}

func viewKey(blogID, userID uuid.UUID) string {
	return fmt.Sprintf("blog_view:%s:%s", blogID, userID)
}

// MarkViewed records that the user viewed the blog. Returns true when this
// is the first view inside the current window, meaning the counter should
// be incremented.
func (t *ViewTracker) MarkViewed(ctx context.Context, blogID, userID uuid.UUID) (bool, error) {
	first, err := t.client.SetNX(ctx, viewKey(blogID, userID), 1, viewWindow).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark view: %w", err)
	}

	return first, nil
}
