package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/writeit/writeit/internal/auth"
	"github.com/writeit/writeit/internal/cache"
	"github.com/writeit/writeit/internal/db"
	"github.com/writeit/writeit/internal/feed"
	"github.com/writeit/writeit/pkg/config"
	"github.com/writeit/writeit/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	tokens *auth.TokenManager
	cfg    *config.AuthConfig
	logger *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, tokens *auth.TokenManager, cfg *config.AuthConfig) *Router {
	return &Router{
		db:     database,
		cache:  redisCache,
		tokens: tokens,
		cfg:    cfg,
		logger: logging.GetLogger().With(zap.String("component", "api-router")),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(Trace())
	engine.Use(RequestLogger())

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	repo := db.NewRepository(r.db.DB, r.cache)
	users := db.NewUserRepository(repo)
	communities := db.NewCommunityRepository(repo)
	memberships := db.NewMembershipRepository(repo, communities)
	posts := db.NewPostRepository(repo)
	comments := db.NewCommentRepository(repo)
	votes := db.NewVoteRepository(repo)

	planner := feed.NewPlanner(communities, memberships)
	assembler := feed.NewAssembler(posts, r.logger)

	authAPI := NewAuthAPI(users, r.tokens, r.cfg)
	userAPI := NewUserAPI(users, posts, memberships, r.logger)
	communityAPI := NewCommunityAPI(communities, memberships)
	postAPI := NewPostAPI(posts, communities, votes, users, planner, assembler, r.logger)
	commentAPI := NewCommentAPI(comments, posts, votes)

	api := engine.Group("/api")
	api.Use(Identity(r.tokens))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authAPI.Register)
		authGroup.POST("/login", authAPI.Login)
		authGroup.POST("/logout", authAPI.Logout)
		authGroup.GET("/users/:username", userAPI.GetByUsername)
	}

	userGroup := api.Group("/users")
	{
		userGroup.GET("/user/:username", userAPI.GetByUsername)
		userGroup.GET("/me", RequireUser(), userAPI.Me)
		userGroup.PUT("/update", RequireUser(), userAPI.Update)
		userGroup.PUT("/save/:postID", RequireUser(), userAPI.ToggleSave)
		userGroup.GET("/saved", RequireUser(), userAPI.SavedPosts)
	}

	subGroup := api.Group("/subs")
	{
		subGroup.GET("/get/:id", communityAPI.Get)
		subGroup.GET("/get-by-name/:nameKey", communityAPI.GetByNameKey)
		subGroup.POST("/create", RequireUser(), communityAPI.Create)
		subGroup.POST("/join/:nameKey", RequireUser(), communityAPI.Join)
		subGroup.POST("/leave/:nameKey", RequireUser(), communityAPI.Leave)
		subGroup.GET("/:nameKey/membership", RequireUser(), communityAPI.Membership)
	}

	postGroup := api.Group("/posts")
	{
		postGroup.GET("/feed", postAPI.Feed)
		postGroup.GET("/get/:id", postAPI.Get)
		postGroup.GET("/user/:username", postAPI.UserPosts)
		postGroup.POST("/create", RequireUser(), postAPI.Create)
		postGroup.PUT("/vote/:id", RequireUser(), postAPI.Vote)
		postGroup.GET("/getvote/:postID", RequireUser(), postAPI.GetVote)
	}

	commentGroup := api.Group("/comments")
	{
		commentGroup.GET("/post/:postID", commentAPI.ListByPost)
		commentGroup.POST("/create", RequireUser(), commentAPI.Create)
		commentGroup.PUT("/vote/:id", RequireUser(), commentAPI.Vote)
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx := c.Request.Context()

	if err := r.db.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DEGRADED",
			"service": "writeit-api",
			"error":   "database unreachable",
		})
		return
	}

	redisStatus := "disabled"
	if err := r.cache.Health(ctx); err == nil {
		redisStatus = "ok"
	} else if err != cache.ErrCacheDisabled {
		redisStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"service": "writeit-api",
		"redis":   redisStatus,
	})
}
