package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/shared"
)

func TestNewRecord_Defaults(t *testing.T) {
	before := time.Now().UTC()
	r, err := NewRecord(NewRecordParams{UserID: "u1", Score: 10, Level: 1})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, CategoryMixed, r.Category)
	assert.True(t, r.Completed)
	assert.False(t, r.CreatedAt.Before(before))
}

func TestNewRecord_KeepsExplicitValues(t *testing.T) {
	incomplete := false
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, err := NewRecord(NewRecordParams{
		UserID:           "u1",
		Score:            0,
		Level:            3,
		TimeSpentSeconds: 45,
		Category:         "logic",
		Completed:        &incomplete,
		CreatedAt:        at,
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryLogic, r.Category)
	assert.False(t, r.Completed)
	assert.Equal(t, at, r.CreatedAt)
	assert.Equal(t, 45, r.TimeSpentSeconds)
}

func TestNewRecord_Validation(t *testing.T) {
	tests := []struct {
		name   string
		params NewRecordParams
		want   error
	}{
		{"empty user", NewRecordParams{Score: 1, Level: 1}, shared.ErrInvalidUserID},
		{"negative score", NewRecordParams{UserID: "u", Score: -1, Level: 1}, shared.ErrInvalidScore},
		{"zero level", NewRecordParams{UserID: "u", Score: 1, Level: 0}, shared.ErrInvalidLevel},
		{"negative time", NewRecordParams{UserID: "u", Score: 1, Level: 1, TimeSpentSeconds: -5}, shared.ErrInvalidTimeSpent},
		{"unknown category", NewRecordParams{UserID: "u", Score: 1, Level: 1, Category: "chess"}, shared.ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestParseCategoryFilter(t *testing.T) {
	assert.Equal(t, CategoryMemory, ParseCategoryFilter("memory"))
	assert.Equal(t, CategoryAny, ParseCategoryFilter(""))
	assert.Equal(t, CategoryAny, ParseCategoryFilter("chess"))
	assert.Equal(t, "all", CategoryAny.String())
}

func TestFilter_Matches(t *testing.T) {
	r := &Record{UserID: "u1", Category: CategoryFocus}

	assert.True(t, Filter{}.Matches(r))
	assert.True(t, ForUser("u1").Matches(r))
	assert.False(t, ForUser("u2").Matches(r))
	assert.True(t, ForUser("u1").WithCategory(CategoryFocus).Matches(r))
	assert.False(t, ForUser("u1").WithCategory(CategoryLogic).Matches(r))
	assert.True(t, Filter{}.WithCategory("bogus").Matches(r))
	assert.False(t, Filter{}.Matches(nil))
}

func summarize(userID string, records []*Record) Summary {
	b := NewSummaryBuilder(userID)
	for _, r := range records {
		b.Add(r)
	}
	return b.Build()
}

func TestSummarize(t *testing.T) {
	records := []*Record{
		{UserID: "u1", Score: 10, Level: 1, TimeSpentSeconds: 30},
		{UserID: "u1", Score: 15, Level: 4, TimeSpentSeconds: 60},
		{UserID: "u1", Score: 20, Level: 2, TimeSpentSeconds: 90},
	}

	got := summarize("u1", records)

	assert.Equal(t, Summary{
		UserID:                "u1",
		TotalGames:            3,
		TotalScore:            45,
		AverageScore:          15,
		HighestScore:          20,
		TotalTimeSpentSeconds: 180,
		HighestLevel:          4,
	}, got)
}

func TestSummarize_NoSessions(t *testing.T) {
	got := summarize("u1", nil)
	assert.Equal(t, Summary{UserID: "u1"}, got)
}

func TestRoundedMean(t *testing.T) {
	assert.Equal(t, 0, RoundedMean(0, 0))
	assert.Equal(t, 2, RoundedMean(3, 2))  // 1.5
	assert.Equal(t, 1, RoundedMean(4, 3))  // 1.33
	assert.Equal(t, 2, RoundedMean(5, 3))  // 1.67
	assert.Equal(t, 3, RoundedMean(5, 2))  // 2.5
	assert.Equal(t, 15, RoundedMean(45, 3))
}

func TestPagination(t *testing.T) {
	q := ListQuery{Page: 2, Limit: 10}
	assert.Equal(t, 10, q.Offset())
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 15, Pages: 2}, NewPagination(q, 15))
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}, NewPagination(ListQuery{}, 0))
}
