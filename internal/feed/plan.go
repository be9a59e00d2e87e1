// Package feed builds and executes post feed queries: parameter validation,
// plan construction (filter, sort, window, pagination) and page assembly.
package feed

import (
	"context"
	"strconv"
	"time"

	"github.com/writeit/writeit/internal/models"
)

// Sort modes
type Sort string

const (
	SortHot Sort = "hot"
	SortNew Sort = "new"
	SortTop Sort = "top"
)

// TimeRange limits top-sorted feeds to a trailing window
type TimeRange string

const (
	RangeHour  TimeRange = "hour"
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
	RangeAll   TimeRange = "all"
)

// Scope selects the membership filter
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeJoined Scope = "joined"
)

// DefaultLimit is the page size when the caller does not send one
const DefaultLimit = 10

// Params are the validated feed request parameters
type Params struct {
	Page         int
	Limit        int
	Sort         Sort
	TimeRange    TimeRange
	Scope        Scope
	CommunityKey string
}

// ParseParams validates raw query values and fills defaults. Empty strings
// take the default; present-but-invalid values are validation errors.
func ParseParams(page, limit, sort, timeRange, scope, communityKey string) (Params, error) {
	p := Params{
		Page:         1,
		Limit:        DefaultLimit,
		Sort:         SortHot,
		TimeRange:    RangeDay,
		Scope:        ScopeGlobal,
		CommunityKey: communityKey,
	}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return p, models.NewValidationError("page must be a positive integer")
		}
		p.Page = n
	}

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return p, models.NewValidationError("limit must be a positive integer")
		}
		p.Limit = n
	}

	if sort != "" {
		switch Sort(sort) {
		case SortHot, SortNew, SortTop:
			p.Sort = Sort(sort)
		default:
			return p, models.NewValidationError("sort must be one of hot, new, top")
		}
	}

	if timeRange != "" {
		switch TimeRange(timeRange) {
		case RangeHour, RangeDay, RangeWeek, RangeMonth, RangeYear, RangeAll:
			p.TimeRange = TimeRange(timeRange)
		default:
			return p, models.NewValidationError("t must be one of hour, day, week, month, year, all")
		}
	}

	if scope != "" {
		switch Scope(scope) {
		case ScopeGlobal, ScopeJoined:
			p.Scope = Scope(scope)
		default:
			return p, models.NewValidationError("filter must be one of global, joined")
		}
	}

	return p, nil
}

// WindowStart returns the createdAt lower bound for the params, if any.
// Only top sort is windowed; hot and new always span all time.
func (p Params) WindowStart(now time.Time) (time.Time, bool) {
	if p.Sort != SortTop || p.TimeRange == RangeAll {
		return time.Time{}, false
	}
	switch p.TimeRange {
	case RangeHour:
		return now.Add(-time.Hour), true
	case RangeDay:
		return now.AddDate(0, 0, -1), true
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	case RangeYear:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Plan is an executable feed query: filters, sort and pagination
type Plan struct {
	// CommunityID restricts to one community when non-nil
	CommunityID *int64
	// CommunityIDs restricts to a set of communities when non-nil. An empty
	// non-nil slice matches nothing (a joined scope with no memberships).
	CommunityIDs []int64
	// Since is the createdAt lower bound when non-nil
	Since *time.Time
	Sort  Sort
	// Pagination
	Offset int
	Limit  int
}

// OrderClause returns the SQL ordering for the plan's sort mode. Descending
// id is the deterministic tie-break everywhere: exact rank ties surface
// newest first and pages stay stable.
func (p *Plan) OrderClause() string {
	switch p.Sort {
	case SortNew:
		return "created_at DESC, id DESC"
	case SortTop:
		return "(up_count - down_count) DESC, id DESC"
	default:
		return "hot_score DESC, id DESC"
	}
}

// CommunityResolver resolves a community key to its record
type CommunityResolver interface {
	GetByNameKey(ctx context.Context, nameKey string) (*models.Community, error)
}

// MembershipSource lists the communities a user has joined
type MembershipSource interface {
	JoinedCommunityIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Planner turns validated params plus a resolved identity into a Plan
type Planner struct {
	communities CommunityResolver
	memberships MembershipSource
}

// NewPlanner creates a new planner
func NewPlanner(communities CommunityResolver, memberships MembershipSource) *Planner {
	return &Planner{
		communities: communities,
		memberships: memberships,
	}
}

// Build resolves the community/scope filters for params. viewer is nil for
// anonymous requests. An explicit community key takes precedence over the
// joined scope; joined scope without a viewer is unauthorized.
func (pl *Planner) Build(ctx context.Context, params Params, viewer *int64, now time.Time) (*Plan, error) {
	plan := &Plan{
		Sort:   params.Sort,
		Offset: (params.Page - 1) * params.Limit,
		Limit:  params.Limit,
	}

	if params.CommunityKey != "" {
		community, err := pl.communities.GetByNameKey(ctx, params.CommunityKey)
		if err != nil {
			return nil, err
		}
		if community == nil {
			return nil, models.NewNotFoundError("community")
		}
		plan.CommunityID = &community.ID
	} else if params.Scope == ScopeJoined {
		if viewer == nil {
			return nil, models.NewUnauthorizedError("sign in to view your joined feed")
		}
		ids, err := pl.memberships.JoinedCommunityIDs(ctx, *viewer)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []int64{}
		}
		plan.CommunityIDs = ids
	}

	if since, ok := params.WindowStart(now); ok {
		plan.Since = &since
	}

	return plan, nil
}
