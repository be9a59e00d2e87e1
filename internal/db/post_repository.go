package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/writeit/writeit/internal/feed"
	"github.com/writeit/writeit/internal/models"
)

// PostRepository provides post-related database operations. It implements
// feed.Store so the assembler can run plans against it directly.
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// Create creates a new post. Counters start at zero and a zero-score post
// has a hot rank of exactly zero regardless of age.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID retrieves a post with its author and community populated
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListFeedPosts executes a feed plan: filter, sort, paginate. Inner joins on
// author and community drop rows whose references no longer resolve.
func (r *PostRepository) ListFeedPosts(ctx context.Context, plan *feed.Plan) ([]models.Post, error) {
	if plan.CommunityIDs != nil && len(plan.CommunityIDs) == 0 {
		// Joined scope with no memberships matches nothing
		return []models.Post{}, nil
	}

	q := r.db.WithContext(ctx).Model(&models.Post{}).
		InnerJoins("Author").
		InnerJoins("Community")

	if plan.CommunityID != nil {
		q = q.Where("posts.community_id = ?", *plan.CommunityID)
	}
	if plan.CommunityIDs != nil {
		q = q.Where("posts.community_id IN ?", plan.CommunityIDs)
	}
	if plan.Since != nil {
		q = q.Where("posts.created_at >= ?", *plan.Since)
	}

	var posts []models.Post
	err := q.Order(plan.OrderClause()).
		Offset(plan.Offset).
		Limit(plan.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAuthor retrieves an author's posts, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		InnerJoins("Author").
		InnerJoins("Community").
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByIDs retrieves posts by id, returned in the order of ids. Missing
// posts are skipped.
func (r *PostRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}

	var posts []models.Post
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		InnerJoins("Author").
		InnerJoins("Community").
		Where("posts.id IN ?", ids).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Post, len(posts))
	for i := range posts {
		byID[posts[i].ID] = posts[i]
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			ordered = append(ordered, post)
		}
	}
	return ordered, nil
}

// PostVoteStatuses returns userID's vote value for each of postIDs that has
// a vote row. Posts without a row are simply absent from the map.
func (r *PostRepository) PostVoteStatuses(ctx context.Context, userID int64, postIDs []int64) (map[int64]int, error) {
	if len(postIDs) == 0 {
		return map[int64]int{}, nil
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}

	statuses := make(map[int64]int, len(votes))
	for i := range votes {
		statuses[votes[i].PostID.Int64] = int(votes[i].Value)
	}
	return statuses, nil
}
