package feed

import (
	"context"
	"testing"
	"time"

	"github.com/writeit/writeit/internal/models"
)

func TestParseParamsDefaults(t *testing.T) {
	p, err := ParseParams("", "", "", "", "", "")
	if err != nil {
		t.Fatalf("ParseParams() error: %v", err)
	}

	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Errorf("default pagination = page %d limit %d, want 1/%d", p.Page, p.Limit, DefaultLimit)
	}
	if p.Sort != SortHot || p.TimeRange != RangeDay || p.Scope != ScopeGlobal {
		t.Errorf("default modes = %s/%s/%s, want hot/day/global", p.Sort, p.TimeRange, p.Scope)
	}
}

func TestParseParamsInvalid(t *testing.T) {
	tests := []struct {
		name                                     string
		page, limit, sort, timeRange, scope, sub string
	}{
		{"bad page", "zero", "", "", "", "", ""},
		{"zero page", "0", "", "", "", "", ""},
		{"negative limit", "", "-5", "", "", "", ""},
		{"bad sort", "", "", "best", "", "", ""},
		{"bad range", "", "", "", "fortnight", "", ""},
		{"bad scope", "", "", "", "", "friends", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.page, tt.limit, tt.sort, tt.timeRange, tt.scope, tt.sub)
			appErr, ok := models.AsAppError(err)
			if !ok || appErr.Code != models.CodeValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sort      Sort
		timeRange TimeRange
		want      time.Time
		windowed  bool
	}{
		{"top hour", SortTop, RangeHour, now.Add(-time.Hour), true},
		{"top day", SortTop, RangeDay, now.AddDate(0, 0, -1), true},
		{"top week", SortTop, RangeWeek, now.AddDate(0, 0, -7), true},
		{"top month is calendar aware", SortTop, RangeMonth, time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC), true},
		{"top year", SortTop, RangeYear, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), true},
		{"top all is unwindowed", SortTop, RangeAll, time.Time{}, false},
		{"hot ignores range", SortHot, RangeHour, time.Time{}, false},
		{"new ignores range", SortNew, RangeDay, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Sort: tt.sort, TimeRange: tt.timeRange}
			got, ok := p.WindowStart(now)
			if ok != tt.windowed {
				t.Fatalf("WindowStart() windowed = %v, want %v", ok, tt.windowed)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("WindowStart() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sort     Sort
		expected string
	}{
		{SortHot, "hot_score DESC, id DESC"},
		{SortNew, "created_at DESC, id DESC"},
		{SortTop, "(up_count - down_count) DESC, id DESC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			plan := &Plan{Sort: tt.sort}
			if got := plan.OrderClause(); got != tt.expected {
				t.Errorf("OrderClause() = %q, want %q", got, tt.expected)
			}
		})
	}
}

type fakeResolver struct {
	communities map[string]*models.Community
}

func (f *fakeResolver) GetByNameKey(_ context.Context, nameKey string) (*models.Community, error) {
	return f.communities[nameKey], nil
}

type fakeMemberships struct {
	joined map[int64][]int64
}

func (f *fakeMemberships) JoinedCommunityIDs(_ context.Context, userID int64) ([]int64, error) {
	return f.joined[userID], nil
}

func testPlanner() *Planner {
	return NewPlanner(
		&fakeResolver{communities: map[string]*models.Community{
			"golang": {ID: 42, NameKey: "golang"},
		}},
		&fakeMemberships{joined: map[int64][]int64{
			7: {1, 2, 3},
		}},
	)
}

func TestPlannerCommunityPrecedence(t *testing.T) {
	viewer := int64(7)
	params := Params{Page: 1, Limit: 10, Sort: SortHot, Scope: ScopeJoined, CommunityKey: "golang"}

	plan, err := testPlanner().Build(context.Background(), params, &viewer, time.Now())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if plan.CommunityID == nil || *plan.CommunityID != 42 {
		t.Errorf("explicit community should win over joined scope, got %+v", plan.CommunityID)
	}
	if plan.CommunityIDs != nil {
		t.Error("joined filter should not be set when a community key is given")
	}
}

func TestPlannerCommunityNotFound(t *testing.T) {
	params := Params{Page: 1, Limit: 10, Sort: SortHot, CommunityKey: "nope"}

	_, err := testPlanner().Build(context.Background(), params, nil, time.Now())
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code != models.CodeNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestPlannerJoinedRequiresViewer(t *testing.T) {
	params := Params{Page: 1, Limit: 10, Sort: SortHot, Scope: ScopeJoined}

	_, err := testPlanner().Build(context.Background(), params, nil, time.Now())
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Code != models.CodeUnauthorized {
		t.Errorf("expected unauthorized error, got %v", err)
	}
}

func TestPlannerJoinedEmptyIsNotAnError(t *testing.T) {
	viewer := int64(99) // no memberships
	params := Params{Page: 1, Limit: 10, Sort: SortHot, Scope: ScopeJoined}

	plan, err := testPlanner().Build(context.Background(), params, &viewer, time.Now())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if plan.CommunityIDs == nil || len(plan.CommunityIDs) != 0 {
		t.Errorf("empty joined set should be an empty filter, got %v", plan.CommunityIDs)
	}
}

func TestPlannerPagination(t *testing.T) {
	params := Params{Page: 3, Limit: 25, Sort: SortNew}

	plan, err := testPlanner().Build(context.Background(), params, nil, time.Now())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if plan.Offset != 50 || plan.Limit != 25 {
		t.Errorf("pagination = offset %d limit %d, want 50/25", plan.Offset, plan.Limit)
	}
}

func TestPlannerTopWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	params := Params{Page: 1, Limit: 10, Sort: SortTop, TimeRange: RangeDay}

	plan, err := testPlanner().Build(context.Background(), params, nil, now)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if plan.Since == nil || !plan.Since.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("top day window lower bound = %v, want %s", plan.Since, now.AddDate(0, 0, -1))
	}
}
