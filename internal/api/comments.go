package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/writeit/writeit/internal/db"
	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/internal/voting"
)

// CommentAPI serves comment creation, listing and votes
type CommentAPI struct {
	comments *db.CommentRepository
	posts    *db.PostRepository
	votes    *db.VoteRepository
}

// NewCommentAPI creates a new comment API
func NewCommentAPI(comments *db.CommentRepository, posts *db.PostRepository, votes *db.VoteRepository) *CommentAPI {
	return &CommentAPI{comments: comments, posts: posts, votes: votes}
}

type createCommentRequest struct {
	PostID   int64  `json:"postId"`
	ParentID *int64 `json:"parentId"`
	Body     string `json:"body"`
}

// commentPayload is the comment projection for listings
type commentPayload struct {
	ID             int64              `json:"id"`
	PostID         int64              `json:"postId"`
	ParentID       *int64             `json:"parentId,omitempty"`
	Body           string             `json:"body"`
	CreatedAt      time.Time          `json:"createdAt"`
	VoteCount      int64              `json:"voteCount"`
	UserVoteStatus int                `json:"userVoteStatus"`
	Author         models.UserSummary `json:"author"`
}

func newCommentPayload(comment *models.Comment, voteStatus int) commentPayload {
	payload := commentPayload{
		ID:             comment.ID,
		PostID:         comment.PostID,
		Body:           comment.Body,
		CreatedAt:      comment.CreatedAt,
		VoteCount:      comment.Score(),
		UserVoteStatus: voteStatus,
	}
	if comment.ParentID.Valid {
		parentID := comment.ParentID.Int64
		payload.ParentID = &parentID
	}
	if comment.Author != nil {
		payload.Author = comment.Author.Summary()
	}
	return payload
}

// Create handles POST /comments/create
func (a *CommentAPI) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Body) == "" {
		writeError(c, models.NewValidationError("comment body is required"))
		return
	}
	if req.PostID == 0 {
		writeError(c, models.NewValidationError("postId is required"))
		return
	}

	comment := &models.Comment{
		AuthorID: mustUserID(c),
		PostID:   req.PostID,
		Body:     req.Body,
	}
	if req.ParentID != nil {
		comment.ParentID = sql.NullInt64{Int64: *req.ParentID, Valid: true}
	}

	if err := a.comments.Create(c.Request.Context(), comment); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommentPayload(comment, voting.None))
}

// ListByPost handles GET /comments/post/:postID: all of a post's comments,
// newest first, annotated with the viewer's votes
func (a *CommentAPI) ListByPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postID"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid post id"))
		return
	}

	ctx := c.Request.Context()

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil {
		writeError(c, models.NewNotFoundError("post"))
		return
	}

	comments, err := a.comments.ListByPost(ctx, postID)
	if err != nil {
		writeError(c, err)
		return
	}

	statuses := map[int64]int{}
	if viewer := currentUserID(c); viewer != nil && len(comments) > 0 {
		ids := make([]int64, 0, len(comments))
		for i := range comments {
			ids = append(ids, comments[i].ID)
		}
		statuses, err = a.comments.CommentVoteStatuses(ctx, *viewer, ids)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	payloads := make([]commentPayload, 0, len(comments))
	for i := range comments {
		status := voting.None
		if s, ok := statuses[comments[i].ID]; ok {
			status = s
		}
		payloads = append(payloads, newCommentPayload(&comments[i], status))
	}

	c.JSON(http.StatusOK, gin.H{"comments": payloads})
}

// Vote handles PUT /comments/vote/:id: a toggle-style vote on a comment
func (a *CommentAPI) Vote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid comment id"))
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	result, err := a.votes.ApplyCommentVote(c.Request.Context(), id, mustUserID(c), req.VoteType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
