package fetcher

import (
	"testing"

	"github.com/gautamkshah/wise-academy/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1845", 1845, true},
		{"  1845?", 1845, true},
		{"12 stars", 12, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := leadingInt(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestFirstInt(t *testing.T) {
	n, ok := firstInt("Total Problems Solved: 342")
	assert.True(t, ok)
	assert.Equal(t, 342, n)

	_, ok = firstInt("Total Problems Solved")
	assert.False(t, ok)
}

func TestSolvedSet(t *testing.T) {
	s := NewSolvedSet("1846C", "1846C", "two-sum")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("1846C"))
	assert.False(t, s.Has("1846D"))
}

func TestCodeForcesID(t *testing.T) {
	tests := []struct {
		link string
		want string
		ok   bool
	}{
		{"https://codeforces.com/contest/1846/problem/C", "1846C", true},
		{"https://codeforces.com/contest/1846/problem/D", "1846D", true},
		{"https://codeforces.com/problemset/problem/4/A", "4A", true},
		{"https://codeforces.com/contest/1846/problem/C1", "1846C1", true},
		{"https://codeforces.com/contest/1846/problem/c", "1846C", true},
		{"https://codeforces.com/problemset/problem/1352/g", "1352G", true},
		{"https://codeforces.com/blog/entry/1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CodeForcesID(tt.link)
		assert.Equal(t, tt.want, got, tt.link)
		assert.Equal(t, tt.ok, ok, tt.link)
	}
}

func TestLeetCodeSlug(t *testing.T) {
	link := "https://leetcode.com/problems/two-sum/description/"
	assert.Equal(t, "two-sum", LeetCodeSlug(&model.Problem{Title: "Ignored", ReferenceURL: &link}))
	assert.Equal(t, "valid-parentheses", LeetCodeSlug(&model.Problem{Title: "Valid Parentheses"}))

	bad := "https://example.com/whatever"
	assert.Equal(t, "merge-intervals", LeetCodeSlug(&model.Problem{Title: "Merge Intervals", ReferenceURL: &bad}))
}
