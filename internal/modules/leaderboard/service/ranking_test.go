package service

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(b byte) uuid.UUID {
	var u uuid.UUID
	u[15] = b
	return u
}

func dept(d string) *string {
	return &d
}

func TestRankEmpty(t *testing.T) {
	got := Rank(nil, GlobalScope())
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Rank([]Standing{{UserID: id(1), Score: 3}}, DepartmentScope("Nowhere"))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankOrdersByScoreThenUserID(t *testing.T) {
	standings := []Standing{
		{UserID: id(4), Score: 2},
		{UserID: id(3), Score: 9},
		{UserID: id(2), Score: 2},
		{UserID: id(1), Score: 0},
	}

	got := Rank(standings, GlobalScope())

	require.Len(t, got, 4)
	assert.Equal(t, []uuid.UUID{id(3), id(2), id(4), id(1)}, []uuid.UUID{got[0].UserID, got[1].UserID, got[2].UserID, got[3].UserID})
	assert.Equal(t, []int{1, 2, 3, 4}, []int{got[0].Rank, got[1].Rank, got[2].Rank, got[3].Rank})
	assert.Equal(t, id(4), standings[0].UserID, "input must not be reordered")
}

func TestRankIgnoresInputOrder(t *testing.T) {
	var standings []Standing
	for i := range 30 {
		standings = append(standings, Standing{UserID: uuid.New(), Score: i % 4})
	}
	want := Rank(standings, GlobalScope())

	r := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		shuffled := append([]Standing(nil), standings...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Rank(shuffled, GlobalScope()))
	}
}

func TestDepartmentScope(t *testing.T) {
	standings := []Standing{
		{UserID: id(1), Department: dept("Sales"), Score: 1},
		{UserID: id(2), Department: dept("Engineering"), Score: 5},
		{UserID: id(3), Score: 8},
		{UserID: id(4), Department: dept("Engineering"), Score: 7},
	}

	got := Rank(standings, DepartmentScope("Engineering"))

	require.Len(t, got, 2)
	assert.Equal(t, id(4), got[0].UserID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, id(2), got[1].UserID)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, "department", DepartmentScope("Engineering").Name())
	assert.Equal(t, "global", GlobalScope().Name())
}

func TestTier(t *testing.T) {
	tests := []struct {
		score    int
		name     string
		next     string
		target   int
		progress float64
	}{
		{0, "Newcomer", "Contributor", 25, 0},
		{10, "Newcomer", "Contributor", 25, 40},
		{25, "Contributor", "Champion", 100, 0},
		{62, "Contributor", "Champion", 100, 49.33},
		{100, "Champion", "Star", 300, 0},
		{299, "Champion", "Star", 300, 99.5},
		{300, "Star", "Legend", 1000, 0},
		{1000, "Legend", MaxTier, 1000, 100},
		{5000, "Legend", MaxTier, 1000, 100},
	}

	for _, tt := range tests {
		got := Tier(tt.score)
		assert.Equal(t, tt.name, got.Name, "score %d", tt.score)
		assert.Equal(t, tt.next, got.NextTier, "score %d", tt.score)
		assert.Equal(t, tt.target, got.TargetPoints, "score %d", tt.score)
		assert.InDelta(t, tt.progress, got.Progress, 0.001, "score %d", tt.score)
		assert.Equal(t, tt.score, got.CurrentPoints)
	}
}

func TestWeeklyLabel(t *testing.T) {
	assert.Equal(t, "", WeeklyLabel(0))
	assert.Equal(t, "📈 Active", WeeklyLabel(WeeklyActive))
	assert.Equal(t, "⚡ Trending", WeeklyLabel(WeeklyTrending))
	assert.Equal(t, "🔥 On Fire!", WeeklyLabel(WeeklyOnFire+1))
}
