package util

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Hadith and book numbers are strings such as "7", "7a" or "10"; they
// must order by their numeric parts rather than byte by byte.
var tokenizer = regexp.MustCompile(`(\d+|\D+)`)

type naturalSortToken struct {
	str   string
	num   int
	isNum bool
}

func tokenize(s string) []naturalSortToken {
	parts := tokenizer.FindAllString(s, -1)
	tokens := make([]naturalSortToken, len(parts))
	for i, p := range parts {
		num, err := strconv.Atoi(p)
		if err == nil {
			tokens[i] = naturalSortToken{num: num, isNum: true}
		} else {
			tokens[i] = naturalSortToken{str: strings.ToLower(p), isNum: false}
		}
	}
	return tokens
}

// NaturalSortLess reports whether s1 sorts before s2 in natural order.
func NaturalSortLess(s1, s2 string) bool {
	return naturalCompare(s1, s2) < 0
}

func naturalCompare(s1, s2 string) int {
	t1 := tokenize(s1)
	t2 := tokenize(s2)
	minLen := min(len(t1), len(t2))

	for i := 0; i < minLen; i++ {
		// If one is a number and the other isn't, the number comes first.
		if t1[i].isNum && !t2[i].isNum {
			return -1
		}
		if !t1[i].isNum && t2[i].isNum {
			return 1
		}

		if t1[i].isNum { // Both are numbers
			if t1[i].num != t2[i].num {
				if t1[i].num < t2[i].num {
					return -1
				}
				return 1
			}
		} else if c := strings.Compare(t1[i].str, t2[i].str); c != 0 {
			return c
		}
	}

	// If all tokens so far are equal, the shorter string comes first.
	return len(t1) - len(t2)
}

// SortNatural sorts items in place by the natural order of key. Items with
// equal keys keep their relative order.
func SortNatural[T any](items []T, key func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return naturalCompare(key(a), key(b))
	})
}
