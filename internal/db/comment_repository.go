package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/writeit/writeit/internal/models"
)

// CommentRepository provides comment-related database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// Create creates a comment and bumps the post's comment counter in the same
// transaction. The post row is locked so concurrent comments cannot lose a
// count. A reply's parent must exist and belong to the same post.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, comment.PostID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("post")
			}
			return err
		}

		if comment.ParentID.Valid {
			var parent models.Comment
			err := tx.First(&parent, comment.ParentID.Int64).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("parent comment")
				}
				return err
			}
			if parent.PostID != comment.PostID {
				return models.NewValidationError("parent comment belongs to a different post")
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves a post's comments, newest first, authors populated
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		InnerJoins("Author").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// CommentVoteStatuses returns userID's vote value for each of commentIDs
// that has a vote row
func (r *CommentRepository) CommentVoteStatuses(ctx context.Context, userID int64, commentIDs []int64) (map[int64]int, error) {
	if len(commentIDs) == 0 {
		return map[int64]int{}, nil
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}

	statuses := make(map[int64]int, len(votes))
	for i := range votes {
		statuses[votes[i].CommentID.Int64] = int(votes[i].Value)
	}
	return statuses, nil
}
