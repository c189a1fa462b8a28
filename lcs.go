package delta

import "github.com/MysMon/delta-sculptor/debug"

// lcsPair matches element a[A] with element b[B].
type lcsPair struct {
	A, B int
}

// findLCS computes a longest common subsequence of a and b under deep
// equality, returned as index pairs ascending in both coordinates. Ties
// are broken toward keeping earlier elements of a.
func findLCS(a, b []any) []lcsPair {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// dp[i][j] is the subsequence length for a[:i] and b[:j].
	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case Equal(a[i-1], b[j-1]):
				dp[i][j] = dp[i-1][j-1] + 1
			case dp[i-1][j] >= dp[i][j-1]:
				dp[i][j] = dp[i-1][j]
			default:
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Backtrack. Preferring the i step on ties pushes matches toward
	// the front of a.
	pairs := make([]lcsPair, 0, dp[n][m])

	i, j := n, m
	for i > 0 && j > 0 {
		switch {
		case dp[i][j] == dp[i-1][j-1]+1 && Equal(a[i-1], b[j-1]):
			pairs = append(pairs, lcsPair{A: i - 1, B: j - 1})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}

	// Reverse into ascending order.
	for l, r := 0, len(pairs)-1; l < r; l, r = l+1, r-1 {
		pairs[l], pairs[r] = pairs[r], pairs[l]
	}

	if debug.LCS() {
		debug.Logf("lcs %dx%d -> %d pairs\n", n, m, len(pairs))
	}

	return pairs
}

// cachedLCS memoizes findLCS through cache. A hit is trusted only after
// every memoized pair is re-checked under deep equality against the actual
// arrays; anything else counts as a miss and is recomputed.
func cachedLCS(cache *lcsCache, a, b []any) []lcsPair {
	if cache == nil {
		return findLCS(a, b)
	}

	key := pairHash(a, b)

	if e, ok := cache.get(key); ok &&
		e.lenA == len(a) && e.lenB == len(b) && pairsValid(e.pairs, a, b) {
		if debug.Cache() {
			debug.Logf("lcs cache hit key=%x pairs=%d\n", key, len(e.pairs))
		}

		return e.pairs
	}

	pairs := findLCS(a, b)
	cache.set(key, &lcsEntry{lenA: len(a), lenB: len(b), pairs: pairs})

	if debug.Cache() {
		debug.Logf("lcs cache store key=%x pairs=%d\n", key, len(pairs))
	}

	return pairs
}

func pairsValid(pairs []lcsPair, a, b []any) bool {
	for _, p := range pairs {
		if p.A >= len(a) || p.B >= len(b) || !Equal(a[p.A], b[p.B]) {
			return false
		}
	}

	return true
}

// ArraySimilarity estimates how alike two arrays are as the ratio of their
// longest common subsequence to the longer array's length, between 0 and
// 1. Two empty arrays are fully similar.
func ArraySimilarity(a, b []any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}

	return float64(len(findLCS(a, b))) / float64(longer)
}
