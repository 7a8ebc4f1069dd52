package diff

import (
	"fmt"
	"strings"
)

// DefaultContextLines is the number of unchanged lines shown around a change.
const DefaultContextLines = 3

// buildHunks groups an edit script into hunks with ctx lines of context.
// Changes separated by at most 2*ctx unchanged lines share a hunk.
func buildHunks(script []Line, ctx int) []Hunk {
	if ctx < 0 {
		ctx = 0
	}

	// oldPos[i] and newPos[i] count the old and new lines before script[i].
	oldPos := make([]int, len(script)+1)
	newPos := make([]int, len(script)+1)
	for i, l := range script {
		oldPos[i+1], newPos[i+1] = oldPos[i], newPos[i]
		if l.Op != OpAdd {
			oldPos[i+1]++
		}
		if l.Op != OpDelete {
			newPos[i+1]++
		}
	}

	var hunks []Hunk
	n := len(script)
	for i := 0; i < n; {
		if script[i].Op == OpContext {
			i++
			continue
		}

		start := max(i-ctx, 0)
		end := i
		for {
			for end < n && script[end].Op != OpContext {
				end++
			}
			run := 0
			for end+run < n && script[end+run].Op == OpContext {
				run++
			}
			if end+run == n || run > 2*ctx {
				end += min(run, ctx)
				break
			}
			end += run
		}

		h := Hunk{
			OldStart: oldPos[start] + 1,
			OldLines: oldPos[end] - oldPos[start],
			NewStart: newPos[start] + 1,
			NewLines: newPos[end] - newPos[start],
			Lines:    append([]Line(nil), script[start:end]...),
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = end
	}

	return hunks
}

// Apply applies hunks to old and returns the new content. Hunks must be in
// order and must not overlap.
func Apply(old []byte, hunks []Hunk) ([]byte, error) {
	lines := splitLines(string(old))

	var out strings.Builder
	out.Grow(len(old))
	pos := 0
	for _, h := range hunks {
		start := h.OldStart
		if h.OldLines > 0 {
			start--
		}
		if start < pos || start > len(lines) {
			return nil, fmt.Errorf("%w: %s starts at line %d", ErrPatchMismatch, h.Header(), start+1)
		}
		for _, l := range lines[pos:start] {
			out.WriteString(l)
		}
		pos = start

		for _, l := range h.Lines {
			switch l.Op {
			case OpAdd:
				out.WriteString(l.Text)
				continue
			case OpContext:
				out.WriteString(l.Text)
			}
			if pos >= len(lines) || lines[pos] != l.Text {
				return nil, fmt.Errorf("%w: %s does not match line %d", ErrPatchMismatch, h.Header(), pos+1)
			}
			pos++
		}
	}
	for _, l := range lines[pos:] {
		out.WriteString(l)
	}

	return []byte(out.String()), nil
}
