package analyzer

// suggest returns the candidate closest to value by edit distance, or ""
// if none is close enough to be a plausible typo: one edit for names of up
// to three runes, two edits for longer ones.
func suggest(value string, candidates []string) string {
	limit := 1
	if len([]rune(value)) > 3 {
		limit = 2
	}

	best, dist := "", -1

	for _, c := range candidates {
		if c == value {
			continue
		}

		d := levenshtein([]rune(value), []rune(c))
		if dist < 0 || d < dist {
			best, dist = c, d
		}
	}

	if dist < 0 || dist > limit {
		return ""
	}

	return best
}

// levenshtein returns the edit distance between a and b using a single
// column of the dynamic programming table.
func levenshtein(a, b []rune) int {
	col := make([]int, len(a)+1)
	for y := range col {
		col[y] = y
	}

	for x := 1; x <= len(b); x++ {
		col[0] = x
		diag := x - 1

		for y := 1; y <= len(a); y++ {
			old := col[y]

			cost := 1
			if a[y-1] == b[x-1] {
				cost = 0
			}

			col[y] = min(col[y]+1, col[y-1]+1, diag+cost)
			diag = old
		}
	}

	return col[len(a)]
}
