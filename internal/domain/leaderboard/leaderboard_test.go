package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindgym/mindgym-hub/internal/domain/session"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func rec(userID string, score int, cat session.Category, at time.Time) *session.Record {
	return &session.Record{
		ID:        fmt.Sprintf("%s-%d-%d", userID, score, at.Unix()),
		UserID:    userID,
		Score:     score,
		Level:     1,
		Category:  cat,
		Completed: true,
		CreatedAt: at,
	}
}

// build runs the same stages GetLeaderboardHandler does over a store scan.
func build(records []*session.Record, f session.Filter, limit int) []Row {
	acc := NewAccumulator()
	for _, r := range records {
		if f.Matches(r) {
			acc.Add(r)
		}
	}
	rows := acc.Rows()
	SortRows(rows)
	return Truncate(rows, limit)
}

// groupReduce computes rows the slow way, one user at a time.
func groupReduce(records []*session.Record) []Row {
	byUser := make(map[string][]*session.Record)
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	rows := make([]Row, 0, len(byUser))
	for userID, group := range byUser {
		row := Row{UserID: userID, TotalGames: len(group), HighestScore: group[0].Score}
		sum := 0
		for _, r := range group {
			sum += r.Score
			if r.Score > row.HighestScore {
				row.HighestScore = r.Score
			}
			if r.CreatedAt.After(row.LastPlayedAt) {
				row.LastPlayedAt = r.CreatedAt
			}
		}
		row.AverageScore = RoundTo2(float64(sum) / float64(len(group)))
		rows = append(rows, row)
	}
	SortRows(rows)
	return rows
}

func TestBuild_OrdersAndAggregates(t *testing.T) {
	records := []*session.Record{
		rec("a", 50, session.CategoryMemory, t0),
		rec("a", 70, session.CategoryMemory, t0.Add(time.Hour)),
		rec("b", 90, session.CategoryLogic, t0),
		rec("c", 10, session.CategoryFocus, t0.Add(2*time.Hour)),
		rec("c", 11, session.CategoryFocus, t0),
		rec("c", 12, session.CategoryFocus, t0),
	}

	got := build(records, session.Filter{}, 10)

	want := []Row{
		{UserID: "b", HighestScore: 90, TotalGames: 1, AverageScore: 90, LastPlayedAt: t0},
		{UserID: "a", HighestScore: 70, TotalGames: 2, AverageScore: 60, LastPlayedAt: t0.Add(time.Hour)},
		{UserID: "c", HighestScore: 12, TotalGames: 3, AverageScore: 11, LastPlayedAt: t0.Add(2 * time.Hour)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_TieBreak(t *testing.T) {
	records := []*session.Record{
		rec("zed", 100, session.CategoryMixed, t0),
		rec("amy", 100, session.CategoryMixed, t0),
		rec("bob", 100, session.CategoryMixed, t0.Add(time.Minute)),
	}

	got := UserIDs(build(records, session.Filter{}, 10))

	assert.Equal(t, []string{"bob", "amy", "zed"}, got)
}

func TestBuild_CategoryFilterAndLimit(t *testing.T) {
	records := []*session.Record{
		rec("a", 10, session.CategoryMemory, t0),
		rec("b", 20, session.CategoryMemory, t0),
		rec("c", 30, session.CategoryMemory, t0),
		rec("d", 99, session.CategoryLogic, t0),
	}

	memory := build(records, session.Filter{}.WithCategory(session.CategoryMemory), 2)
	assert.Equal(t, []string{"c", "b"}, UserIDs(memory))

	unknown := build(records, session.Filter{}.WithCategory("chess"), 10)
	all := build(records, session.Filter{}, 10)
	assert.Equal(t, all, unknown)
	assert.Len(t, all, 4)

	assert.Len(t, build(records, session.Filter{}, 0), 4)
}

func TestBuild_AverageRoundsToTwoDecimals(t *testing.T) {
	records := []*session.Record{
		rec("a", 10, session.CategoryMixed, t0),
		rec("a", 10, session.CategoryMixed, t0),
		rec("a", 11, session.CategoryMixed, t0),
	}

	got := build(records, session.Filter{}, 10)
	require.Len(t, got, 1)
	assert.Equal(t, 10.33, got[0].AverageScore)
}

func TestAccumulator_MatchesPerUserReduce(t *testing.T) {
	faker := gofakeit.New(42)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	cats := session.Categories()

	records := make([]*session.Record, 0, 200)
	for i := 0; i < 200; i++ {
		records = append(records, rec(
			users[faker.IntRange(0, len(users)-1)],
			faker.IntRange(0, 1000),
			cats[faker.IntRange(0, len(cats)-1)],
			t0.Add(time.Duration(faker.IntRange(0, 10000))*time.Second),
		))
	}

	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	streamed := acc.Rows()
	SortRows(streamed)

	assert.Equal(t, len(users), acc.Len())
	if diff := cmp.Diff(groupReduce(records), streamed); diff != "" {
		t.Errorf("Accumulator mismatch (-batch +streamed):\n%s", diff)
	}
}

func TestEnrich_DropsUnresolved(t *testing.T) {
	rows := []Row{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}}
	names := map[string]string{"a": "alice", "c": "carol", "b": ""}

	got := Enrich(rows, names)

	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "carol", got[1].Username)
	assert.Empty(t, rows[0].Username)
}

func TestBestScoresAndCountAbove(t *testing.T) {
	records := []*session.Record{
		rec("a", 100, session.CategoryMemory, t0),
		rec("b", 100, session.CategoryMemory, t0),
		rec("c", 90, session.CategoryMemory, t0),
		rec("c", 20, session.CategoryMemory, t0),
		rec("d", 5, session.CategoryLogic, t0),
	}
	best := BestScores(records, session.Filter{}.WithCategory(session.CategoryMemory))
	position := func(userID string) Position {
		score, ok := best[userID]
		if !ok {
			return Unranked()
		}
		return NewPosition(score, CountAbove(best, score))
	}

	top := position("a")
	require.True(t, top.IsRanked())
	assert.Equal(t, Rank(1), *top.Rank)
	assert.Equal(t, 100, top.Score)

	tied := position("b")
	assert.Equal(t, Rank(1), *tied.Rank)

	third := position("c")
	assert.Equal(t, Rank(3), *third.Rank)
	assert.Equal(t, 90, third.Score)

	none := position("d")
	assert.False(t, none.IsRanked())
	assert.Equal(t, Unranked(), none)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 500, NormalizeLimit(500))
}

func TestRank(t *testing.T) {
	assert.Equal(t, "#3", Rank(3).String())
}
