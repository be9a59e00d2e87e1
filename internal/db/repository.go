package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/writeit/writeit/internal/cache"
	"github.com/writeit/writeit/internal/models"
)

// communityCacheTTL bounds staleness of the by-key community lookup
const communityCacheTTL = 60 * time.Second

// Repository provides database access methods
type Repository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewRepository creates a new repository. cache may be nil.
func NewRepository(db *gorm.DB, c *cache.Cache) *Repository {
	return &Repository{db: db, cache: c}
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ToggleSaved saves postID for userID, or unsaves it when already saved.
// Returns true when the post ends up saved.
func (r *UserRepository) ToggleSaved(ctx context.Context, userID, postID int64) (bool, error) {
	saved := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SavedPost
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&models.SavedPost{}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			saved = true
			return tx.Create(&models.SavedPost{
				UserID:    userID,
				PostID:    postID,
				CreatedAt: time.Now().UTC(),
			}).Error
		default:
			return err
		}
	})
	return saved, err
}

// SavedPostIDs returns the IDs of posts userID has saved, newest first
func (r *UserRepository) SavedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CommunityRepository provides community-related database operations
type CommunityRepository struct {
	*Repository
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(repo *Repository) *CommunityRepository {
	return &CommunityRepository{Repository: repo}
}

func communityKeyCacheKey(nameKey string) string {
	return cache.HashKey("community", "by-key", nameKey)
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id int64) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// GetByNameKey retrieves a community by its URL key, consulting the cache
// first. Keys are stored lowercase; the caller normalizes input.
func (r *CommunityRepository) GetByNameKey(ctx context.Context, nameKey string) (*models.Community, error) {
	cacheKey := communityKeyCacheKey(nameKey)

	var cached models.Community
	if err := r.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var community models.Community
	if err := r.db.WithContext(ctx).Where("name_key = ?", nameKey).First(&community).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Cache errors are non-fatal
	_ = r.cache.SetJSON(ctx, cacheKey, &community, communityCacheTTL)

	return &community, nil
}

// invalidate drops the cached by-key entry after a write
func (r *CommunityRepository) invalidate(ctx context.Context, nameKey string) {
	_ = r.cache.Delete(ctx, communityKeyCacheKey(nameKey))
}

// Create creates a community and enrolls the owner as its first member
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		community.MembersCount = 1
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.Membership{
			CommunityID: community.ID,
			UserID:      community.OwnerID,
			Role:        models.RoleOwner,
			CreatedAt:   time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return err
	}
	r.invalidate(ctx, community.NameKey)
	return nil
}

// Update updates a community
func (r *CommunityRepository) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		return err
	}
	r.invalidate(ctx, community.NameKey)
	return nil
}

// MembershipRepository provides membership-related database operations
type MembershipRepository struct {
	*Repository
	communities *CommunityRepository
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(repo *Repository, communities *CommunityRepository) *MembershipRepository {
	return &MembershipRepository{Repository: repo, communities: communities}
}

// Get retrieves a membership, or nil when the user is not a member
func (r *MembershipRepository) Get(ctx context.Context, communityID, userID int64) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

// Join enrolls userID in the community. Joining twice is a no-op.
func (r *MembershipRepository) Join(ctx context.Context, community *models.Community, userID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Membership
		err := tx.Where("community_id = ? AND user_id = ?", community.ID, userID).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&models.Membership{
			CommunityID: community.ID,
			UserID:      userID,
			Role:        models.RoleMember,
			CreatedAt:   time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", community.ID).
			UpdateColumn("members_count", gorm.Expr("members_count + 1")).Error
	})
	if err != nil {
		return err
	}
	r.communities.invalidate(ctx, community.NameKey)
	return nil
}

// Leave removes userID from the community. The owner cannot leave.
func (r *MembershipRepository) Leave(ctx context.Context, community *models.Community, userID int64) error {
	if community.OwnerID == userID {
		return models.NewForbiddenError("the owner cannot leave their community")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("community_id = ? AND user_id = ?", community.ID, userID).
			Delete(&models.Membership{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Community{}).
			Where("id = ?", community.ID).
			UpdateColumn("members_count", gorm.Expr("members_count - 1")).Error
	})
	if err != nil {
		return err
	}
	r.communities.invalidate(ctx, community.NameKey)
	return nil
}

// JoinedCommunityIDs returns the IDs of communities userID belongs to
func (r *MembershipRepository) JoinedCommunityIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// JoinedCommunities returns summaries of the communities userID belongs to
func (r *MembershipRepository) JoinedCommunities(ctx context.Context, userID int64) ([]models.CommunitySummary, error) {
	var communities []models.Community
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.community_id = communities.id").
		Where("memberships.user_id = ?", userID).
		Order("communities.display_name ASC").
		Find(&communities).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]models.CommunitySummary, 0, len(communities))
	for i := range communities {
		summaries = append(summaries, communities[i].Summary())
	}
	return summaries, nil
}
