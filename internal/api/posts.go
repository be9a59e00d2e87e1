package api

import (
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

// Title length bounds for new posts
const (
	minTitleLength = 3
	maxTitleLength = 150
)

// PostAPI serves post creation, reads, feeds and votes
type PostAPI struct {
	posts       *db.PostRepository
	communities *db.CommunityRepository
	votes       *db.VoteRepository
	users       *db.UserRepository
	planner     *feed.Planner
	assembler   *feed.Assembler
	logger      *zap.Logger
}

// NewPostAPI creates a new post API
func NewPostAPI(
	posts *db.PostRepository,
	communities *db.CommunityRepository,
	votes *db.VoteRepository,
	users *db.UserRepository,
	planner *feed.Planner,
	assembler *feed.Assembler,
	logger *zap.Logger,
) *PostAPI {
	return &PostAPI{
		posts:       posts,
		communities: communities,
		votes:       votes,
		users:       users,
		planner:     planner,
		assembler:   assembler,
		logger:      logger,
	}
}

type createPostRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	ImageURL     string `json:"imageUrl"`
	CommunityKey string `json:"communityKey"`
}

// postPayload is the single-post projection: full content, no truncation
type postPayload struct {
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

func newPostPayload(post *models.Post, voteStatus int) postPayload {
	return postPayload{
		ID:             post.ID,
		Title:          post.Title,
		Content:        post.Content,
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

// Create handles POST /posts/create
func (a *PostAPI) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" || req.CommunityKey == "" {
		writeError(c, models.NewValidationError("title, content and communityKey are required"))
		return
	}
	if n := len([]rune(req.Title)); n < minTitleLength || n > maxTitleLength {
		writeError(c, models.NewValidationError("title must be 3-150 characters"))
		return
	}

	ctx := c.Request.Context()

	community, err := a.communities.GetByNameKey(ctx, strings.ToLower(req.CommunityKey))
	if err != nil {
		writeError(c, err)
		return
	}
	if community == nil {
		writeError(c, models.NewNotFoundError("community"))
		return
	}

	userID := mustUserID(c)
	post := &models.Post{
		AuthorID:    userID,
		CommunityID: community.ID,
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
	}
	if err := a.posts.Create(ctx, post); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": post.ID})
}

// Get handles GET /posts/get/:id
func (a *PostAPI) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid post id"))
		return
	}

	ctx := c.Request.Context()

	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if post == nil || post.Author == nil || post.Community == nil {
		writeError(c, models.NewNotFoundError("post"))
		return
	}

	status := voting.None
	if viewer := currentUserID(c); viewer != nil {
		status, err = a.votes.PostVoteStatus(ctx, post.ID, *viewer)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, newPostPayload(post, status))
}

// Feed handles GET /posts/feed. All parameters are optional; anonymous
// requests get the global feed.
func (a *PostAPI) Feed(c *gin.Context) {
	params, err := feed.ParseParams(
		c.Query("page"),
		c.Query("limit"),
		c.Query("sort"),
		c.Query("t"),
		c.Query("filter"),
		strings.ToLower(c.Query("subName")),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	viewer := currentUserID(c)

	plan, err := a.planner.Build(ctx, params, viewer, time.Now().UTC())
	if err != nil {
		writeError(c, err)
		return
	}

	// Fetch one row past the page so hasMore reflects the store even when
	// the dangling-reference filter shrinks the page
	plan.Limit = params.Limit + 1

	items, err := a.assembler.BuildPage(ctx, plan, viewer)
	if err != nil {
		writeError(c, err)
		return
	}

	items, hasMore := trimPage(items, params.Limit)
	c.JSON(http.StatusOK, gin.H{
		"posts":   items,
		"hasMore": hasMore,
	})
}

// trimPage reduces an overfetched page to limit items and reports whether a
// row beyond the page existed
func trimPage(items []feed.FeedItem, limit int) ([]feed.FeedItem, bool) {
	if len(items) > limit {
		return items[:limit], true
	}
	return items, false
}

// UserPosts handles GET /posts/user/:username: one author's posts, newest
// first, annotated for the viewer
func (a *PostAPI) UserPosts(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, models.NewValidationError("page must be a positive integer"))
			return
		}
		page = n
	}
	limit := feed.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(c, models.NewValidationError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	ctx := c.Request.Context()

	user, err := a.users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	if user == nil {
		writeError(c, models.NewNotFoundError("user"))
		return
	}

	rows, err := a.posts.ListByAuthor(ctx, user.ID, (page-1)*limit, limit+1)
	if err != nil {
		writeError(c, err)
		return
	}

	items, err := annotatePosts(ctx, a.posts, rows, currentUserID(c), a.logger)
	if err != nil {
		writeError(c, err)
		return
	}

	items, hasMore := trimPage(items, limit)
	c.JSON(http.StatusOK, gin.H{
		"posts":   items,
		"hasMore": hasMore,
	})
}

type voteRequest struct {
	VoteType int `json:"voteType"`
}

// Vote handles PUT /posts/vote/:id: a toggle-style vote on a post
func (a *PostAPI) Vote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid post id"))
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	result, err := a.votes.ApplyPostVote(c.Request.Context(), id, mustUserID(c), req.VoteType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVote handles GET /posts/getvote/:postID: the caller's current vote
func (a *PostAPI) GetVote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("postID"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid post id"))
		return
	}

	status, err := a.votes.PostVoteStatus(c.Request.Context(), id, mustUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userVoteStatus": status})
}
