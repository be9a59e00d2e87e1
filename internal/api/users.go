package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/writeit/writeit/internal/db"
	"github.com/writeit/writeit/internal/feed"
	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/internal/voting"
)

// UserAPI serves user profiles, profile updates and saved posts
type UserAPI struct {
	users       *db.UserRepository
	posts       *db.PostRepository
	memberships *db.MembershipRepository
	logger      *zap.Logger
}

// NewUserAPI creates a new user API
func NewUserAPI(users *db.UserRepository, posts *db.PostRepository, memberships *db.MembershipRepository, logger *zap.Logger) *UserAPI {
	return &UserAPI{
		users:       users,
		posts:       posts,
		memberships: memberships,
		logger:      logger,
	}
}

// profilePayload is the public account projection
type profilePayload struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	ProfilePic  string    `json:"profilePic"`
	About       string    `json:"about"`
	Karma       int64     `json:"karma"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newProfilePayload(user *models.User) profilePayload {
	return profilePayload{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		ProfilePic:  user.ProfilePic,
		About:       user.About,
		Karma:       user.Karma,
		CreatedAt:   user.CreatedAt,
	}
}

// Me handles GET /users/me: the caller's account plus joined communities
// and saved post ids
func (a *UserAPI) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID := mustUserID(c)

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		writeError(c, models.NewNotFoundError("user"))
		return
	}

	joined, err := a.memberships.JoinedCommunities(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	savedIDs, err := a.users.SavedPostIDs(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if savedIDs == nil {
		savedIDs = []int64{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":              newUserPayload(user),
		"joinedCommunities": joined,
		"savedPosts":        savedIDs,
	})
}

// GetByUsername handles GET /users/user/:username
func (a *UserAPI) GetByUsername(c *gin.Context) {
	user, err := a.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		writeError(c, models.NewNotFoundError("user"))
		return
	}
	c.JSON(http.StatusOK, newProfilePayload(user))
}

type updateUserRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	About       string `json:"about"`
	ProfilePic  string `json:"profilePic"`
}

// Update handles PUT /users/update: empty fields are left unchanged
func (a *UserAPI) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	userID := mustUserID(c)

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		writeError(c, models.NewNotFoundError("user"))
		return
	}

	if req.DisplayName != "" {
		name := strings.TrimSpace(req.DisplayName)
		if n := len(name); n < 3 || n > 30 {
			writeError(c, models.NewValidationError("display name must be 3-30 characters"))
			return
		}
		user.DisplayName = name
	}
	if req.Email != "" {
		email := strings.TrimSpace(req.Email)
		if !emailPattern.MatchString(email) {
			writeError(c, models.NewValidationError("invalid email format"))
			return
		}
		if existing, err := a.users.GetByEmail(ctx, email); err != nil {
			writeError(c, err)
			return
		} else if existing != nil && existing.ID != userID {
			writeError(c, models.NewConflictError("email already in use"))
			return
		}
		user.Email = email
	}
	if req.About != "" {
		user.About = req.About
	}
	if req.ProfilePic != "" {
		user.ProfilePic = req.ProfilePic
	}

	if err := a.users.Update(ctx, user); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserPayload(user))
}

// ToggleSave handles PUT /users/save/:postID
func (a *UserAPI) ToggleSave(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("postID"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid post id"))
		return
	}

	ctx := c.Request.Context()
	userID := mustUserID(c)

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil {
		writeError(c, models.NewNotFoundError("post"))
		return
	}

	saved, err := a.users.ToggleSaved(ctx, userID, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isSaved": saved})
}

// SavedPosts handles GET /users/saved: the caller's saved posts as feed
// items, most recently saved first
func (a *UserAPI) SavedPosts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := mustUserID(c)

	ids, err := a.users.SavedPostIDs(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	posts, err := a.posts.ListByIDs(ctx, ids)
	if err != nil {
		writeError(c, err)
		return
	}

	items, err := annotatePosts(ctx, a.posts, posts, &userID, a.logger)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": items})
}

// annotatePosts projects posts into feed items with the viewer's vote
// statuses attached. Rows with dangling references are dropped.
func annotatePosts(ctx context.Context, posts *db.PostRepository, rows []models.Post, viewer *int64, logger *zap.Logger) ([]feed.FeedItem, error) {
	statuses := map[int64]int{}
	if viewer != nil && len(rows) > 0 {
		ids := make([]int64, 0, len(rows))
		for i := range rows {
			ids = append(ids, rows[i].ID)
		}
		var err error
		statuses, err = posts.PostVoteStatuses(ctx, *viewer, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]feed.FeedItem, 0, len(rows))
	for i := range rows {
		post := &rows[i]
		if post.Author == nil || post.Community == nil {
			logger.Warn("skipping post with dangling reference", zap.Int64("post_id", post.ID))
			continue
		}
		status := voting.None
		if s, ok := statuses[post.ID]; ok {
			status = s
		}
		items = append(items, feed.NewFeedItem(post, status))
	}
	return items, nil
}
