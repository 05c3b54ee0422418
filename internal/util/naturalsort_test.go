package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalSortLess(t *testing.T) {
	testCases := []struct {
		s1, s2   string
		expected bool
	}{
		{"2", "10", true},
		{"10", "2", false},
		{"7", "7a", true},
		{"7a", "7b", true},
		{"7b", "8", true},
		{"99", "100", true},
		{"book 2", "book 10", true},
		{"Book 2", "book 2", false},
		{"book 2", "Book 2", false},
		{"1", "1", false},
		{"", "1", true},
	}
	for _, tc := range testCases {
		if result := NaturalSortLess(tc.s1, tc.s2); result != tc.expected {
			t.Errorf("NaturalSortLess(%q, %q) = %v; want %v", tc.s1, tc.s2, result, tc.expected)
		}
	}
}

func TestSortNatural(t *testing.T) {
	type book struct {
		number string
		name   string
	}
	books := []book{
		{"10", "Knowledge"},
		{"2", "Belief"},
		{"1", "Revelation"},
		{"2", "Belief (cont.)"},
		{"1a", "Revelation, appendix"},
	}

	SortNatural(books, func(b book) string { return b.number })

	var names []string
	for _, b := range books {
		names = append(names, b.name)
	}
	assert.Equal(t, []string{"Revelation", "Revelation, appendix", "Belief", "Belief (cont.)", "Knowledge"}, names)
}
