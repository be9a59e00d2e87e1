package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/writeit/writeit/internal/db"
	"github.com/writeit/writeit/internal/models"
)

// CommunityAPI serves community creation, lookup and membership
type CommunityAPI struct {
	communities *db.CommunityRepository
	memberships *db.MembershipRepository
}

// NewCommunityAPI creates a new community API
func NewCommunityAPI(communities *db.CommunityRepository, memberships *db.MembershipRepository) *CommunityAPI {
	return &CommunityAPI{communities: communities, memberships: memberships}
}

type createCommunityRequest struct {
	NameKey     string `json:"nameKey"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	BannerImg   string `json:"bannerImg"`
	IconImg     string `json:"iconImg"`
}

// communityPayload is the full community projection
type communityPayload struct {
	ID           int64     `json:"id"`
	NameKey      string    `json:"nameKey"`
	DisplayName  string    `json:"displayName"`
	Description  string    `json:"description"`
	BannerImg    string    `json:"bannerImg"`
	IconImg      string    `json:"iconImg"`
	OwnerID      int64     `json:"ownerId"`
	MembersCount int64     `json:"membersCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newCommunityPayload(community *models.Community) communityPayload {
	return communityPayload{
		ID:           community.ID,
		NameKey:      community.NameKey,
		DisplayName:  community.DisplayName,
		Description:  community.Description,
		BannerImg:    community.BannerImg,
		IconImg:      community.IconImg,
		OwnerID:      community.OwnerID,
		MembersCount: community.MembersCount,
		CreatedAt:    community.CreatedAt,
	}
}

// Create handles POST /subs/create
func (a *CommunityAPI) Create(c *gin.Context) {
	var req createCommunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, models.NewValidationError("invalid request body"))
		return
	}

	nameKey := strings.ToLower(strings.TrimSpace(req.NameKey))
	if !models.ValidNameKey(nameKey) {
		writeError(c, models.NewValidationError("nameKey must be 3-21 lowercase letters, digits or underscores"))
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = nameKey
	}
	if len(displayName) > 50 {
		writeError(c, models.NewValidationError("display name must be at most 50 characters"))
		return
	}
	if len(req.Description) > 500 {
		writeError(c, models.NewValidationError("description must be at most 500 characters"))
		return
	}

	ctx := c.Request.Context()

	existing, err := a.communities.GetByNameKey(ctx, nameKey)
	if err != nil {
		writeError(c, err)
		return
	}
	if existing != nil {
		writeError(c, models.NewConflictError("a community with this name already exists"))
		return
	}

	community := &models.Community{
		NameKey:     nameKey,
		DisplayName: displayName,
		Description: req.Description,
		BannerImg:   req.BannerImg,
		IconImg:     req.IconImg,
		OwnerID:     mustUserID(c),
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.communities.Create(ctx, community); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommunityPayload(community))
}

// GetByNameKey handles GET /subs/get-by-name/:nameKey. The response carries
// the viewer's membership when signed in.
func (a *CommunityAPI) GetByNameKey(c *gin.Context) {
	ctx := c.Request.Context()
	nameKey := strings.ToLower(c.Param("nameKey"))

	community, err := a.communities.GetByNameKey(ctx, nameKey)
	if err != nil {
		writeError(c, err)
		return
	}
	if community == nil {
		writeError(c, models.NewNotFoundError("community"))
		return
	}

	isMember := false
	if viewer := currentUserID(c); viewer != nil {
		membership, err := a.memberships.Get(ctx, community.ID, *viewer)
		if err != nil {
			writeError(c, err)
			return
		}
		isMember = membership != nil
	}

	c.JSON(http.StatusOK, gin.H{
		"community": newCommunityPayload(community),
		"isMember":  isMember,
	})
}

// resolveByNameKey loads the community from the :nameKey route parameter
func (a *CommunityAPI) resolveByNameKey(c *gin.Context) (*models.Community, bool) {
	nameKey := strings.ToLower(c.Param("nameKey"))

	community, err := a.communities.GetByNameKey(c.Request.Context(), nameKey)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if community == nil {
		writeError(c, models.NewNotFoundError("community"))
		return nil, false
	}
	return community, true
}

// Get handles GET /subs/get/:id
func (a *CommunityAPI) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, models.NewValidationError("invalid community id"))
		return
	}

	community, err := a.communities.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if community == nil {
		writeError(c, models.NewNotFoundError("community"))
		return
	}
	c.JSON(http.StatusOK, newCommunityPayload(community))
}

// Join handles POST /subs/join/:nameKey
func (a *CommunityAPI) Join(c *gin.Context) {
	community, ok := a.resolveByNameKey(c)
	if !ok {
		return
	}

	if err := a.memberships.Join(c.Request.Context(), community, mustUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isMember": true})
}

// Leave handles POST /subs/leave/:nameKey
func (a *CommunityAPI) Leave(c *gin.Context) {
	community, ok := a.resolveByNameKey(c)
	if !ok {
		return
	}

	if err := a.memberships.Leave(c.Request.Context(), community, mustUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isMember": false})
}

// Membership handles GET /subs/:nameKey/membership
func (a *CommunityAPI) Membership(c *gin.Context) {
	community, ok := a.resolveByNameKey(c)
	if !ok {
		return
	}

	membership, err := a.memberships.Get(c.Request.Context(), community.ID, mustUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if membership == nil {
		c.JSON(http.StatusOK, gin.H{"isMember": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"isMember": true,
		"role":     membership.Role,
	})
}
