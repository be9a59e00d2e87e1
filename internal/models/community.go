package models

import (
	"regexp"
	"time"
)

// Community represents a named community ("sub")
type Community struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	NameKey      string    `gorm:"type:varchar(21);not null;uniqueIndex:communities_ux_name_key;column:name_key"`
	DisplayName  string    `gorm:"type:varchar(50);not null;column:display_name"`
	Description  string    `gorm:"type:varchar(500);not null;default:'';column:description"`
	BannerImg    string    `gorm:"type:varchar(1024);not null;default:'';column:banner_img"`
	IconImg      string    `gorm:"type:varchar(1024);not null;default:'';column:icon_img"`
	OwnerID      int64     `gorm:"not null;column:owner_id"`
	MembersCount int64     `gorm:"not null;default:0;column:members_count"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Owner *User `gorm:"foreignKey:OwnerID;references:ID"`
}

// TableName specifies the table name for Community
func (Community) TableName() string {
	return "communities"
}

// nameKeyPattern is the URL-safe community key format
var nameKeyPattern = regexp.MustCompile(`^[a-z0-9_]{3,21}$`)

// ValidNameKey reports whether key is a valid lowercase community key
func ValidNameKey(key string) bool {
	return nameKeyPattern.MatchString(key)
}

// CommunitySummary is the community projection attached to posts
type CommunitySummary struct {
	ID          int64  `json:"id"`
	NameKey     string `json:"nameKey"`
	DisplayName string `json:"displayName"`
	IconImg     string `json:"iconImg"`
}

// Summary returns the public community projection
func (c *Community) Summary() CommunitySummary {
	return CommunitySummary{
		ID:          c.ID,
		NameKey:     c.NameKey,
		DisplayName: c.DisplayName,
		IconImg:     c.IconImg,
	}
}

// Membership ties a user to a community with a role
type Membership struct {
	CommunityID int64     `gorm:"primaryKey;column:community_id"`
	UserID      int64     `gorm:"primaryKey;column:user_id"`
	Role        int16     `gorm:"type:smallint;not null;column:role"`
	CreatedAt   time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
	User      *User      `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Membership
func (Membership) TableName() string {
	return "memberships"
}

// Membership role constants
const (
	RoleMember    int16 = 0
	RoleModerator int16 = 1
	RoleAdmin     int16 = 2
	RoleOwner     int16 = 3
)
