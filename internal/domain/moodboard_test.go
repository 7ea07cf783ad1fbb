package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayURL(t *testing.T) {
	item := MoodboardItem{URL: "u"}
	assert.Equal(t, "u", item.DisplayURL())

	item.EnhancedURL = "e"
	item.OriginalURL = "o"
	assert.Equal(t, "e", item.DisplayURL())

	flipped := item.ToggleOriginal()
	assert.Equal(t, "o", flipped.DisplayURL())
	assert.False(t, item.ShowingOriginal, "toggle returns a copy")
	assert.Equal(t, "e", flipped.ToggleOriginal().DisplayURL())

	noOriginal := MoodboardItem{URL: "u", EnhancedURL: "e", ShowingOriginal: true}
	assert.Equal(t, "e", noOriginal.DisplayURL())
}

func TestApplyPatchLeavesNilFields(t *testing.T) {
	item := MoodboardItem{ID: "1", URL: "u", OriginalURL: "o", EnhancedURL: "e", Source: SourceUpload}
	status := TaskCompleted
	got := item.Apply(ItemPatch{EnhancementStatus: &status})
	assert.Equal(t, "u", got.URL)
	assert.Equal(t, "o", got.OriginalURL)
	assert.Equal(t, "e", got.EnhancedURL)
	assert.Equal(t, TaskCompleted, got.EnhancementStatus)
	assert.Equal(t, SourceUpload, got.Source)
}

func TestMoodboardAggregates(t *testing.T) {
	mb := Moodboard{
		Items: []MoodboardItem{
			{ID: "1", Source: SourceUpload},
			{ID: "2", Source: SourcePexels, EnhancedURL: "e"},
			{ID: "3", Source: SourcePexels},
		},
	}
	mb.AppendEnhancement(EnhancementLogEntry{Cost: 1})
	mb.AppendEnhancement(EnhancementLogEntry{Cost: 2})

	assert.Equal(t, 3, mb.TotalCost())
	assert.Equal(t, 1, mb.EnhancedCount())
	assert.Equal(t, map[ItemSource]int{SourceUpload: 1, SourcePexels: 2}, mb.SourceBreakdown())
}

func TestRequestNormalizeAndValidate(t *testing.T) {
	req := EnhancementRequest{UserID: " u ", ItemID: " i ", Type: EnhancementMood, Prompt: "  moody  "}.Normalize(ProviderSeedream)
	require.NoError(t, req.Validate())
	assert.Equal(t, "i", req.ItemID)
	assert.Equal(t, "moody", req.Prompt)
	assert.Equal(t, ProviderSeedream, req.Provider)
	assert.Equal(t, DefaultStrength, req.StrengthValue())

	negative := -0.1
	req.Strength = &negative
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)

	zero := 0.0
	req.Strength = &zero
	req = req.Normalize(ProviderSeedream)
	require.NoError(t, req.Validate())
	assert.Zero(t, req.StrengthValue(), "an explicit zero strength is kept")

	_, err := ParseEnhancementType("Lighting ")
	require.NoError(t, err)
	_, err = ParseEnhancementType("sepia")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTaskStatusPredicates(t *testing.T) {
	assert.True(t, TaskCompleted.Terminal())
	assert.True(t, TaskFailed.Terminal())
	assert.False(t, TaskPolling.Terminal())
	assert.True(t, TaskProcessing.Active())
	assert.False(t, TaskIdle.Active())
}

func TestCreditTierAllowance(t *testing.T) {
	for tier, want := range map[CreditTier]int{CreditTierFree: 0, CreditTierPlus: 10, CreditTierPro: 25} {
		got, ok := tier.MonthlyAllowance()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := CreditTier("enterprise").MonthlyAllowance()
	assert.False(t, ok)
}
