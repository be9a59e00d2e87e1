package api

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/writeit/writeit/internal/auth"
	"github.com/writeit/writeit/internal/db"
	"github.com/writeit/writeit/internal/models"
	"github.com/writeit/writeit/pkg/config"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,21}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// AuthAPI serves registration, login and logout
type AuthAPI struct {
	users  *db.UserRepository
	tokens *auth.TokenManager
	cfg    *config.AuthConfig
}

// NewAuthAPI creates a new auth API
func NewAuthAPI(users *db.UserRepository, tokens *auth.TokenManager, cfg *config.AuthConfig) *AuthAPI {
	return &AuthAPI{users: users, tokens: tokens, cfg: cfg}
}

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userPayload is the account projection returned to its owner
type userPayload struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	ProfilePic  string    `json:"profilePic"`
	About       string    `json:"about"`
	Karma       int64     `json:"karma"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newUserPayload(user *models.User) userPayload {
	return userPayload{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		ProfilePic:  user.ProfilePic,
		About:       user.About,
		Karma:       user.Karma,
		CreatedAt:   user.CreatedAt,
	}
}

func validateRegistration(req *registerRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.NewValidationError("username, email and password are required")
	}
	if !usernamePattern.MatchString(req.Username) {
		return models.NewValidationError("username must be 3-21 lowercase letters, digits or underscores")
	}
	if req.DisplayName != "" {
		if n := len(req.DisplayName); n < 3 || n > 30 {
			return models.NewValidationError("display name must be 3-30 characters")
		}
	}
	if len(req.Password) < auth.MinPasswordLength {
		return models.NewValidationError("password must be at least 8 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		return models.NewValidationError("invalid email format")
	}
	return nil
}

// Register handles POST /auth/register
func (a *AuthAPI) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	req.Email = strings.TrimSpace(req.Email)

	if err := validateRegistration(&req); err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()

	if existing, err := a.users.GetByUsername(ctx, req.Username); err != nil {
		writeError(c, err)
		return
	} else if existing != nil {
		writeError(c, models.NewConflictError("username already exists"))
		return
	}
	if existing, err := a.users.GetByEmail(ctx, req.Email); err != nil {
		writeError(c, err)
		return
	} else if existing != nil {
		writeError(c, models.NewConflictError("email already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &models.User{
		Username:     req.Username,
		DisplayName:  displayName,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.users.Create(ctx, user); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserPayload(user))
}

// Login handles POST /auth/login
func (a *AuthAPI) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	user, err := a.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	// One message for both failure modes
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(c, models.NewUnauthorizedError("username or password is wrong"))
		return
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	a.setAuthCookie(c, token, int(a.tokens.TTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  newUserPayload(user),
	})
}

// Logout handles POST /auth/logout
func (a *AuthAPI) Logout(c *gin.Context) {
	a.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

func (a *AuthAPI) setAuthCookie(c *gin.Context, token string, maxAge int) {
	// Cross-site clients need SameSite=None; that requires Secure
	if a.cfg.SecureCookie {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(authCookie, token, maxAge, "/", "", a.cfg.SecureCookie, true)
}
