package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/writeit/writeit/internal/feed"
	"github.com/writeit/writeit/internal/models"
)

func newPostRepo(db *gorm.DB) *PostRepository {
	return NewPostRepository(NewRepository(db, nil))
}

func TestListFeedPosts_EmptyJoinedScope(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	// A joined scope with no memberships short-circuits without a query
	plan := &feed.Plan{
		CommunityIDs: []int64{},
		Sort:         feed.SortHot,
		Limit:        10,
	}

	posts, err := repo.ListFeedPosts(context.Background(), plan)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFeedPosts_HotOrdering(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "up_count", "down_count", "hot_score", "created_at"}).
		AddRow(2, "second", 10, 0, 1.5, createdAt).
		AddRow(1, "first", 5, 0, 1.1, createdAt)

	mock.ExpectQuery(`SELECT (.+) FROM "posts"(.+)ORDER BY hot_score DESC, id DESC`).
		WillReturnRows(rows)

	plan := &feed.Plan{Sort: feed.SortHot, Limit: 10}
	posts, err := repo.ListFeedPosts(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(2), posts[0].ID)
	assert.Equal(t, int64(1), posts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostVoteStatuses(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	mock.ExpectQuery(`SELECT (.+) FROM "votes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "post_id", "value"}).
			AddRow(1, 42, 10, 1).
			AddRow(2, 42, 11, -1))

	statuses, err := repo.PostVoteStatuses(context.Background(), 42, []int64{10, 11, 12})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{10: 1, 11: -1}, statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostVoteStatuses_NoIDs(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	statuses, err := repo.PostVoteStatuses(context.Background(), 42, nil)
	require.NoError(t, err)
	assert.Empty(t, statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostCreate_SetsCreatedAt(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	post := &models.Post{AuthorID: 1, CommunityID: 2, Title: "hello", Content: "body"}
	err := repo.Create(context.Background(), post)
	require.NoError(t, err)
	assert.False(t, post.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByIDs_PreservesOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := newPostRepo(db)

	rows := sqlmock.NewRows([]string{"id", "title"}).
		AddRow(1, "one").
		AddRow(3, "three")

	mock.ExpectQuery(`SELECT (.+) FROM "posts"`).
		WillReturnRows(rows)

	// 2 is missing from storage and is skipped
	posts, err := repo.ListByIDs(context.Background(), []int64{3, 2, 1})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(3), posts[0].ID)
	assert.Equal(t, int64(1), posts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
