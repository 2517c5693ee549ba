// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package formstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestBuildMeansByCode(t *testing.T) {
	rows := []Row{
		{"code": "A", "x": 1},
		{"code": "A", "x": 3},
		{"code": "B", "x": 5},
	}

	got := BuildMeansByCode(rows, []string{"x"})
	assert.Equal(t, ByCode[*float64]{
		"A": {"x": ptr(2.0)},
		"B": {"x": ptr(5.0)},
	}, got)
}

func TestBuildMeansByCodeRoundingAndNulls(t *testing.T) {
	rows := []Row{
		{"code": "A", "x": "1", "y": nil},
		{"code": "A", "x": "2", "y": ""},
		{"code": "A", "x": "2"},
		{"code": "", "x": 100},
		{"x": 100},
		{"code": nil, "x": 100},
	}

	got := BuildMeansByCode(rows, []string{"x", "y"})
	require.Len(t, got, 1, "rows without a code belong to no group")
	assert.Equal(t, 1.7, *got["A"]["x"])

	y, present := got.Get("A", "y")
	assert.True(t, present, "every requested field has an entry")
	assert.Nil(t, y)

	got = BuildMeansByCode(rows, []string{"x"}, WithDigits(2))
	assert.Equal(t, 1.67, *got["A"]["x"])

	got = BuildMeansByCode(rows, []string{"x"}, WithDigits(0))
	assert.Equal(t, 2.0, *got["A"]["x"])
}

func TestBuildMeansByCodeSkipsBlankAnswers(t *testing.T) {
	rows := []Row{
		{"code": "A", "krPer": "80"},
		{"code": "A", "krPer": "   "},
		{"code": "A", "krPer": "90"},
		{"code": "B", "krPer": " "},
	}

	got := BuildMeansByCode(rows, []string{"krPer"})
	assert.Equal(t, 85.0, *got["A"]["krPer"], "a blank answer does not pull the mean toward zero")
	assert.Nil(t, got["B"]["krPer"])
}

func TestBuildModesByCode(t *testing.T) {
	rows := []Row{
		{"code": "A", "y": "1"},
		{"code": "A", "y": "1"},
		{"code": "A", "y": "3"},
	}

	got := BuildModesByCode(rows, []string{"y"})
	assert.Equal(t, ByCode[*string]{"A": {"y": ptr("1")}}, got)
}

func TestBuildModesByCodeTieBreakOverride(t *testing.T) {
	rows := []Row{
		{"code": "A", "country": "us", "skill": "4"},
		{"code": "A", "country": "kr", "skill": "2"},
		{"code": "B", "country": nil, "skill": ""},
	}

	got := BuildModesByCode(rows, []string{"country", "skill"}, WithTieBreaks(map[string]TieBreak{
		"country": PriorityTieBreak("kr", "us"),
	}))

	assert.Equal(t, "kr", *got["A"]["country"])
	assert.Equal(t, "2", *got["A"]["skill"])
	assert.Nil(t, got["B"]["country"])
	assert.Nil(t, got["B"]["skill"])
}

func TestBuildModesByCodeAllowedValues(t *testing.T) {
	rows := []Row{
		{"code": "A", "country": "xx", "skill": "5"},
		{"code": "A", "country": "xx", "skill": "5"},
		{"code": "A", "country": "us", "skill": "1"},
		{"code": "B", "country": "Korea"},
		{"code": "B", "country": ""},
	}

	got := BuildModesByCode(rows, []string{"country", "skill"},
		WithTieBreaks(map[string]TieBreak{"country": PriorityTieBreak("kr", "us")}),
		WithAllowedValues(map[string][]string{"country": {"kr", "us"}}))

	assert.Equal(t, "us", *got["A"]["country"], "unlisted values are not votes")
	assert.Equal(t, "5", *got["A"]["skill"], "open fields count every value")
	assert.Nil(t, got["B"]["country"], "no listed votes means no mode")
}

func TestBuildClosestRangesByCode(t *testing.T) {
	rows := []Row{
		{"code": "A", "x": 1},
		{"code": "A", "x": 2},
		{"code": "A", "x": 3},
		{"code": "A", "x": 4},
		{"code": "A", "x": 100},
		{"code": "B", "x": nil},
	}

	got := BuildClosestRangesByCode(rows, []string{"x"}, DefaultFraction)
	require.NotNil(t, got["A"]["x"])
	assert.Equal(t, ClosestRange{Mean: 22, Min: 2, Max: 4, N: 5, K: 3}, *got["A"]["x"])
	assert.Nil(t, got["B"]["x"])
}

func TestBuildSummariesByCode(t *testing.T) {
	rows := []Row{
		{"code": "A-1", "importance": 10},
		{"code": "A-1", "importance": 20},
		{"code": "A-1", "importance": 30},
		{"code": "A-1", "importance": 40},
		{"code": "A-2", "importance": "기타"},
	}

	got := BuildSummariesByCode(rows, []string{"importance"})

	a1 := got["A-1"]["importance"]
	assert.Equal(t, 4, a1.N)
	assert.Equal(t, 25.0, *a1.Mean)
	assert.Equal(t, 25.0, *a1.Median)
	assert.Equal(t, "12.5 ~ 37.5", a1.Range)

	a2 := got["A-2"]["importance"]
	assert.Equal(t, 0, a2.N)
	assert.Nil(t, a2.Mean)
}

func TestGroupingIsIdempotent(t *testing.T) {
	rows := []Row{
		{"code": "A", "x": "2", "y": "5"},
		{"code": "B", "x": "4", "y": "5"},
		{"code": "A", "x": "3", "y": "2"},
		{"code": "A", "x": nil, "y": "2"},
	}
	fields := []string{"x", "y"}

	assert.Equal(t, BuildMeansByCode(rows, fields), BuildMeansByCode(rows, fields))
	assert.Equal(t, BuildModesByCode(rows, fields), BuildModesByCode(rows, fields))
	assert.Equal(t, BuildSummariesByCode(rows, fields), BuildSummariesByCode(rows, fields))
	assert.Equal(t, BuildClosestRangesByCode(rows, fields, 0.5), BuildClosestRangesByCode(rows, fields, 0.5))
}

func TestCodes(t *testing.T) {
	rows := []Row{
		{"code": "B"},
		{"code": "A"},
		{"code": "B"},
		{"code": ""},
		{"code": 0},
		{"code": false},
		{},
	}
	assert.Equal(t, []string{"B", "A"}, Codes(rows))
}

func TestRankLabel(t *testing.T) {
	label := RankLabel([]Ranked{
		{Name: "한국", Value: 3},
		{Name: "미국", Value: 1},
		{Name: "일본", Value: nil},
		{Name: "중국", Value: "2"},
		{Name: "유럽", Value: 3},
	})
	assert.Equal(t, "미국 > 중국 > 한국 > 유럽", label)

	assert.Equal(t, "", RankLabel([]Ranked{{Name: "한국"}}))
}
