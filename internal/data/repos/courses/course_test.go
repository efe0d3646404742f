package courses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/yanxue-backend/internal/data/repos/testutil"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"gorm.io/datatypes"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewCourseRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.Course{{
		Title:          "北京历史文化研学之旅",
		Description:    "走进故宫",
		TargetAudience: "初中生",
		Duration:       5,
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	id := created[0].ID
	require.NotEqual(t, uuid.Nil, id)

	got, err := repo.GetByIDs(ctx, tx, []uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{}`, string(got[0].Framework))
	assert.JSONEq(t, `[]`, string(got[0].Content))

	err = repo.Update(ctx, tx, id, map[string]any{
		"duration":  6,
		"framework": datatypes.JSON(`{"courseObjectives":["a"]}`),
	})
	require.NoError(t, err)

	got, err = repo.GetByIDs(ctx, tx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Equal(t, 6, got[0].Duration)
	assert.JSONEq(t, `{"courseObjectives":["a"]}`, string(got[0].Framework))

	list, err := repo.List(ctx, tx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := repo.Delete(ctx, tx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByIDs(ctx, tx, []uuid.UUID{id})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResourceRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewResourceRepo(db, testutil.Logger(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, nil, []*types.Resource{
		{Title: "故宫导览", Type: "video", URL: "https://example.com/v", Tags: datatypes.JSONSlice[string]{"故宫", "历史"}},
		{Title: "研学手册", Type: "document", URL: "https://example.com/d"},
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	videos, err := repo.List(ctx, nil, "video")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, []string{"故宫", "历史"}, []string(videos[0].Tags))

	docs, err := repo.List(ctx, nil, "document")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.NotNil(t, docs[0].Tags)

	require.NoError(t, repo.Update(ctx, nil, docs[0].ID, map[string]any{"title": "研学手册（新版）"}))
	got, err := repo.GetByIDs(ctx, nil, []uuid.UUID{docs[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "研学手册（新版）", got[0].Title)

	ok, err := repo.Delete(ctx, nil, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
