package style

// EditDistance is the Levenshtein distance between original and edited,
// counted in runes with unit cost for insert, delete and substitute.
func EditDistance(original, edited string) int {
	a, b := []rune(original), []rune(edited)

	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
		dp[i][0] = i
	}
	for j := range dp[0] {
		dp[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
		}
	}

	return dp[len(a)][len(b)]
}
