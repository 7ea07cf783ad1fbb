package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodboard/internal/domain"
	"moodboard/internal/sqlinline"
)

var updatedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func itemRow(status string, showingOriginal bool) []any {
	return []any{
		"item-1", "mb-1", "ai-enhanced", "https://cdn.test/new.jpg", "https://cdn.test/orig.jpg",
		"https://cdn.test/new.jpg", status, showingOriginal, 3, updatedAt,
	}
}

func TestItemRepoGetItem(t *testing.T) {
	exec := &stubExecutor{row: itemRow("completed", false)}
	item, err := NewItemRepo(exec).GetItem(context.Background(), "item-1")
	require.NoError(t, err)

	assert.Equal(t, sqlinline.QSelectMoodboardItem, exec.last().query)
	assert.Equal(t, domain.SourceAIEnhanced, item.Source)
	assert.Equal(t, domain.TaskCompleted, item.EnhancementStatus)
	assert.Equal(t, 3, item.Position)
	assert.Equal(t, "https://cdn.test/new.jpg", item.DisplayURL())
}

func TestItemRepoGetItemNotFound(t *testing.T) {
	_, err := NewItemRepo(&stubExecutor{}).GetItem(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepoUpdateItemSendsNullsForUnsetFields(t *testing.T) {
	exec := &stubExecutor{row: itemRow("idle", true)}
	showing := true
	item, err := NewItemRepo(exec).UpdateItem(context.Background(), "item-1", domain.ItemPatch{ShowingOriginal: &showing})
	require.NoError(t, err)
	assert.True(t, item.ShowingOriginal)

	args := exec.last().args
	require.Len(t, args, 7)
	assert.Equal(t, "item-1", args[0])
	assert.Nil(t, args[1].(*string))
	assert.Nil(t, args[4].(*string))
	assert.Equal(t, true, *args[5].(*bool))
	assert.Nil(t, args[6].(*string))
}

func TestItemRepoUpdateItemConvertsEnums(t *testing.T) {
	exec := &stubExecutor{row: itemRow("completed", false)}
	status := domain.TaskCompleted
	source := domain.SourceAIEnhanced
	_, err := NewItemRepo(exec).UpdateItem(context.Background(), "item-1", domain.ItemPatch{
		EnhancementStatus: &status,
		Source:            &source,
	})
	require.NoError(t, err)

	args := exec.last().args
	assert.Equal(t, "completed", *args[4].(*string))
	assert.Equal(t, "ai-enhanced", *args[6].(*string))
}

func TestEnhancementRepoAppend(t *testing.T) {
	exec := &stubExecutor{}
	repo := NewEnhancementRepo(exec)
	repo.now = func() time.Time { return updatedAt }

	err := repo.AppendEnhancementLog(context.Background(), domain.EnhancementLogEntry{
		ID:              "log-1",
		MoodboardID:     "mb-1",
		ItemID:          "item-1",
		EnhancementType: domain.EnhancementMood,
		Provider:        domain.ProviderSeedream,
		Cost:            2,
	})
	require.NoError(t, err)

	args := exec.last().args
	require.Len(t, args, 11)
	assert.Equal(t, "mood", args[5])
	assert.Equal(t, "seedream", args[6])
	assert.Equal(t, 2, args[8])
	assert.Equal(t, updatedAt, args[10])

	err = repo.AppendEnhancementLog(context.Background(), domain.EnhancementLogEntry{ID: "log-2"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestEnhancementRepoTotalAndEntries(t *testing.T) {
	exec := &stubExecutor{row: []any{5}}
	repo := NewEnhancementRepo(exec)

	total, err := repo.TotalCost(context.Background(), "mb-1")
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	exec.rows = [][]any{
		{"log-1", "mb-1", "item-1", "o", "e", "lighting", "nanobanana", "task-1", 1, "Lighting via Nanobanana", updatedAt},
		{"log-2", "mb-1", "item-2", "o", "e", "style", "seedream", "", 2, "Style via Seedream", updatedAt},
	}
	entries, err := repo.ListEnhancements(context.Background(), "mb-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ProviderSeedream, entries[1].Provider)
	assert.Equal(t, domain.EnhancementLighting, entries[0].EnhancementType)
}

func TestCreditRepoGetBalance(t *testing.T) {
	b, err := NewCreditRepo(&stubExecutor{}).GetBalance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CreditBalance{UserID: "user-1", Tier: domain.CreditTierFree}, b)

	b, err = NewCreditRepo(&stubExecutor{row: []any{"user-1", 7, 10, "plus"}}).GetBalance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, b.Current)
	assert.Equal(t, domain.CreditTierPlus, b.Tier)

	_, err = NewCreditRepo(&stubExecutor{err: errors.New("conn reset")}).GetBalance(context.Background(), "user-1")
	require.ErrorContains(t, err, "conn reset")
}

func TestCreditRepoGrantMonthly(t *testing.T) {
	exec := &stubExecutor{row: []any{"user-1", 25, 25, "pro"}}
	b, err := NewCreditRepo(exec).GrantMonthly(context.Background(), "user-1", domain.CreditTierPro)
	require.NoError(t, err)
	assert.Equal(t, 25, b.Current)
	assert.Equal(t, []any{"user-1", 25, "pro"}, exec.last().args)

	_, err = NewCreditRepo(exec).GrantMonthly(context.Background(), "user-1", "gold")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestTaskRepoSaveTask(t *testing.T) {
	exec := &stubExecutor{}
	repo := NewTaskRepo(exec)

	err := repo.SaveTask(context.Background(), domain.TaskRecord{
		ID:        "run-1",
		TaskID:    "task-1",
		ItemID:    "item-1",
		Provider:  domain.ProviderNanoBanana,
		Type:      domain.EnhancementLighting,
		Status:    domain.TaskPolling,
		Strength:  0.8,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	})
	require.NoError(t, err)
	args := exec.last().args
	require.Len(t, args, 17)
	assert.Equal(t, "nanobanana", args[5])
	assert.Equal(t, "polling", args[10])
	assert.Equal(t, "", args[12])

	require.ErrorIs(t, repo.SaveTask(context.Background(), domain.TaskRecord{}), domain.ErrInvalidRequest)
}

func TestTaskRepoClaimStale(t *testing.T) {
	exec := &stubExecutor{rows: [][]any{{
		"run-1", "task-1", "user-1", "mb-1", "item-1", "nanobanana",
		"lighting", "warm", 0.8, "https://cdn.test/a.jpg", "polling",
		"", "", "",
		1, updatedAt, updatedAt,
	}}}
	recs, err := NewTaskRepo(exec).ClaimStale(context.Background(), 5*time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.TaskPolling, recs[0].Status)
	assert.Equal(t, domain.ProviderNanoBanana, recs[0].Provider)
	assert.Equal(t, []any{300.0, 10}, exec.last().args)

	recs, err = NewTaskRepo(exec).ClaimStale(context.Background(), time.Minute, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestItemRepoListItems(t *testing.T) {
	exec := &stubExecutor{rows: [][]any{itemRow("completed", false), itemRow("idle", true)}}
	items, err := NewItemRepo(exec).ListItems(context.Background(), "mb-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, sqlinline.QListMoodboardItems, exec.last().query)
	assert.Equal(t, []any{"mb-1"}, exec.last().args)
	assert.True(t, items[1].ShowingOriginal)
}
