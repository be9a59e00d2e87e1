package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/internal/voting"
	"github.com/writeit/writeit/pkg/telemetry"
)

// Preview truncation for list views. Full content is never mutated in
// storage; single-post reads return it whole.
const (
	previewRunes    = 150
	previewEllipsis = "..."
)

// FeedItem is the per-request post projection returned by feed endpoints.
// It is built fresh every time and never cached or persisted.
type FeedItem struct {
	ID             int64                   `json:"id"`
	Title          string                  `json:"title"`
	Content        string                  `json:"content"`
	ImageURL       string                  `json:"imageUrl,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	CommentCount   int64                   `json:"commentCount"`
	VoteCount      int64                   `json:"voteCount"`
	HotScore       float64                 `json:"hotScore"`
	UserVoteStatus int                     `json:"userVoteStatus"`
	Author         models.UserSummary      `json:"author"`
	Community      models.CommunitySummary `json:"community"`
}

// TruncateContent caps content at 150 characters for list display, appending
// an ellipsis marker when something was cut. Measured in runes, not bytes.
func TruncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + previewEllipsis
}

// NewFeedItem projects a post (with author and community populated) into a
// feed item for the given viewer vote status.
func NewFeedItem(post *models.Post, voteStatus int) FeedItem {
	return FeedItem{
		ID:             post.ID,
		Title:          post.Title,
		Content:        TruncateContent(post.Content),
		ImageURL:       post.ImageURL,
		CreatedAt:      post.CreatedAt,
		CommentCount:   post.CommentCount,
		VoteCount:      post.Score(),
		HotScore:       post.HotScore,
		UserVoteStatus: voteStatus,
		Author:         post.Author.Summary(),
		Community:      post.Community.Summary(),
	}
}

// Store is the post storage consumed by the assembler. ListFeedPosts must
// apply the plan's filter, sort and pagination in that order and return
// posts with Author and Community populated, excluding rows whose author or
// community no longer exists.
type Store interface {
	ListFeedPosts(ctx context.Context, plan *Plan) ([]models.Post, error)
	PostVoteStatuses(ctx context.Context, userID int64, postIDs []int64) (map[int64]int, error)
}

// Assembler executes a plan and produces a page of feed items
type Assembler struct {
	store  Store
	logger *zap.Logger
}

// NewAssembler creates a new assembler
func NewAssembler(store Store, logger *zap.Logger) *Assembler {
	return &Assembler{
		store:  store,
		logger: logger,
	}
}

// BuildPage executes the plan and annotates the results for viewer (nil for
// anonymous). A page past the end of the data is an empty slice, not an
// error; the client infers hasMore from the returned count.
func (a *Assembler) BuildPage(ctx context.Context, plan *Plan, viewer *int64) ([]FeedItem, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.build_page")
	defer span.End()

	posts, err := a.store.ListFeedPosts(ctx, plan)
	if err != nil {
		return nil, err
	}

	statuses := map[int64]int{}
	if viewer != nil && len(posts) > 0 {
		ids := make([]int64, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}
		statuses, err = a.store.PostVoteStatuses(ctx, *viewer, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]FeedItem, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		if post.Author == nil || post.Community == nil {
			// Dangling reference: drop the row, keep the page.
			a.logger.Warn("skipping post with dangling reference", zap.Int64("post_id", post.ID))
			continue
		}
		status := voting.None
		if s, ok := statuses[post.ID]; ok {
			status = s
		}
		items = append(items, NewFeedItem(post, status))
	}

	return items, nil
}
