package diff

// lineScript returns the edit script turning a into b, one Line per input
// line. Common leading and trailing lines are trimmed before running Myers'
// algorithm on the rest. When more than maxEdits insertions and deletions
// would be needed the differing middle is replaced wholesale instead, and
// the second return value is false.
func lineScript(a, b []string, maxEdits int) ([]Line, bool) {
	var pre int
	for pre < len(a) && pre < len(b) && a[pre] == b[pre] {
		pre++
	}
	var suf int
	for suf < len(a)-pre && suf < len(b)-pre && a[len(a)-1-suf] == b[len(b)-1-suf] {
		suf++
	}

	script := make([]Line, 0, len(a)+len(b)-pre-suf)
	for _, l := range a[:pre] {
		script = append(script, Line{Op: OpContext, Text: l})
	}

	ma, mb := a[pre:len(a)-suf], b[pre:len(b)-suf]
	mid, ok := myers(ma, mb, maxEdits)
	if !ok {
		mid = replace(ma, mb)
	}
	script = append(script, mid...)

	for _, l := range a[len(a)-suf:] {
		script = append(script, Line{Op: OpContext, Text: l})
	}
	return script, ok
}

func replace(a, b []string) []Line {
	script := make([]Line, 0, len(a)+len(b))
	for _, l := range a {
		script = append(script, Line{Op: OpDelete, Text: l})
	}
	for _, l := range b {
		script = append(script, Line{Op: OpAdd, Text: l})
	}
	return script
}

// myers runs the greedy O(ND) algorithm from "An O(ND) Difference Algorithm
// and Its Variations" (Myers, 1986), keeping every path inside the edit
// graph.
func myers(a, b []string, maxEdits int) ([]Line, bool) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return replace(a, b), true
	}

	limit := n + m
	if maxEdits > 0 && maxEdits < limit {
		limit = maxEdits
	}

	off := limit + 1
	v := make([]int, 2*limit+3)
	// trace[d] holds v[-d..d] as it stood after round d.
	trace := make([][]int, 0, 16)
	get := func(k int) int { return v[off+k] }

	for d := 0; d <= limit; d++ {
		for k := -d; k <= d; k += 2 {
			x := 0
			if d > 0 {
				_, x = choose(get, k, d, n, m)
				if x < 0 {
					v[off+k] = -1
					continue
				}
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[off+k] = x
			if x == n && y == m {
				return backtrack(a, b, trace, d), true
			}
		}
		w := make([]int, 2*d+1)
		copy(w, v[off-d:off+d+1])
		trace = append(trace, w)
	}

	return nil, false
}

// choose picks the furthest reaching (d-1)-path that a d-path on diagonal k
// extends, preferring an insertion over a deletion on ties. get returns the
// furthest x on a diagonal after round d-1, or -1 if it was not reached. It
// returns x -1 when no valid move exists.
func choose(get func(int) int, k, d, n, m int) (pk, x int) {
	pk, x = 0, -1
	if k < d {
		if dx := get(k + 1); dx >= 0 && dx-k <= m {
			pk, x = k+1, dx
		}
	}
	if k > -d {
		if rx := get(k - 1); rx >= 0 && rx+1 <= n && rx+1 > x {
			pk, x = k-1, rx+1
		}
	}
	return pk, x
}

func backtrack(a, b []string, trace [][]int, last int) []Line {
	x, y := len(a), len(b)
	rev := make([]Line, 0, x+y)

	for d := last; d > 0; d-- {
		prev := trace[d-1]
		get := func(k int) int { return prev[k+d-1] }

		k := x - y
		pk, _ := choose(get, k, d, len(a), len(b))
		px := get(pk)
		py := px - pk

		for x > px && y > py {
			x--
			y--
			rev = append(rev, Line{Op: OpContext, Text: a[x]})
		}
		if pk == k+1 {
			y--
			rev = append(rev, Line{Op: OpAdd, Text: b[y]})
		} else {
			x--
			rev = append(rev, Line{Op: OpDelete, Text: a[x]})
		}
	}
	for x > 0 && y > 0 {
		x--
		y--
		rev = append(rev, Line{Op: OpContext, Text: a[x]})
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
