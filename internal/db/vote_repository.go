package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/internal/ranking"
	"github.com/writeit/writeit/internal/voting"
	"github.com/writeit/writeit/pkg/telemetry"
)

// VoteRepository is the vote ledger: it owns every transition of a user's
// vote on a post or comment, and keeps the item's counters (and, for posts,
// the stored hot rank) in step inside the same transaction.
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// VoteResult is the outcome of a vote application
type VoteResult struct {
	// Score is the item's net votes after the transition
	Score int64 `json:"voteCount"`
	// Status is the caller's vote on the item after the transition
	Status int `json:"userVoteStatus"`
}

// ApplyPostVote applies a toggle-style vote to a post: requesting the
// current direction clears it, anything else replaces it. The post row is
// locked for the duration so concurrent votes serialize.
func (r *VoteRepository) ApplyPostVote(ctx context.Context, postID, userID int64, requested int) (*VoteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "votes.apply_post")
	defer span.End()

	if !voting.Valid(requested) {
		return nil, models.NewValidationError("vote must be 1 or -1")
	}

	var result VoteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, postID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("post")
			}
			return err
		}

		vote, err := voteRow(tx, "post_id", postID, userID)
		if err != nil {
			return err
		}

		current := voting.None
		if vote != nil {
			current = int(vote.Value)
		}
		next := voting.Resolve(current, requested)

		newRow := models.Vote{
			UserID: userID,
			PostID: sql.NullInt64{Int64: postID, Valid: true},
		}
		if err := writeVoteRow(tx, vote, newRow, next); err != nil {
			return err
		}

		upDelta, downDelta := voting.Deltas(current, next)
		post.UpCount += upDelta
		post.DownCount += downDelta
		post.HotScore = ranking.HotScore(post.UpCount, post.DownCount, post.CreatedAt)

		err = tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"up_count":   post.UpCount,
				"down_count": post.DownCount,
				"hot_score":  post.HotScore,
			}).Error
		if err != nil {
			return err
		}

		result = VoteResult{Score: post.Score(), Status: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ApplyCommentVote applies a toggle-style vote to a comment. Comments carry
// no stored rank, so only the counters move.
func (r *VoteRepository) ApplyCommentVote(ctx context.Context, commentID, userID int64, requested int) (*VoteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "votes.apply_comment")
	defer span.End()

	if !voting.Valid(requested) {
		return nil, models.NewValidationError("vote must be 1 or -1")
	}

	var result VoteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&comment, commentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("comment")
			}
			return err
		}

		vote, err := voteRow(tx, "comment_id", commentID, userID)
		if err != nil {
			return err
		}

		current := voting.None
		if vote != nil {
			current = int(vote.Value)
		}
		next := voting.Resolve(current, requested)

		newRow := models.Vote{
			UserID:    userID,
			CommentID: sql.NullInt64{Int64: commentID, Valid: true},
		}
		if err := writeVoteRow(tx, vote, newRow, next); err != nil {
			return err
		}

		upDelta, downDelta := voting.Deltas(current, next)
		comment.UpCount += upDelta
		comment.DownCount += downDelta

		err = tx.Model(&models.Comment{}).
			Where("id = ?", comment.ID).
			Updates(map[string]interface{}{
				"up_count":   comment.UpCount,
				"down_count": comment.DownCount,
			}).Error
		if err != nil {
			return err
		}

		result = VoteResult{Score: comment.Score(), Status: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PostVoteStatus returns userID's current vote on a post
func (r *VoteRepository) PostVoteStatus(ctx context.Context, postID, userID int64) (int, error) {
	return r.voteStatus(ctx, "post_id", postID, userID)
}

// CommentVoteStatus returns userID's current vote on a comment
func (r *VoteRepository) CommentVoteStatus(ctx context.Context, commentID, userID int64) (int, error) {
	return r.voteStatus(ctx, "comment_id", commentID, userID)
}

func (r *VoteRepository) voteStatus(ctx context.Context, itemColumn string, itemID, userID int64) (int, error) {
	vote, err := voteRow(r.db.WithContext(ctx), itemColumn, itemID, userID)
	if err != nil {
		return voting.None, err
	}
	if vote == nil {
		return voting.None, nil
	}
	return int(vote.Value), nil
}

// voteRow loads the user's vote row for one item, or nil when absent
func voteRow(tx *gorm.DB, itemColumn string, itemID, userID int64) (*models.Vote, error) {
	var vote models.Vote
	err := tx.Where("user_id = ? AND "+itemColumn+" = ?", userID, itemID).
		First(&vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// writeVoteRow persists a vote transition: delete on clear, update in place
// on direction change, insert on a fresh vote.
func writeVoteRow(tx *gorm.DB, existing *models.Vote, fresh models.Vote, next int) error {
	now := time.Now().UTC()
	switch {
	case next == voting.None:
		if existing == nil {
			return nil
		}
		return tx.Delete(&models.Vote{}, existing.ID).Error
	case existing != nil:
		return tx.Model(&models.Vote{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"value":      next,
				"updated_at": now,
			}).Error
	default:
		fresh.Value = int16(next)
		fresh.CreatedAt = now
		fresh.UpdatedAt = now
		return tx.Create(&fresh).Error
	}
}
