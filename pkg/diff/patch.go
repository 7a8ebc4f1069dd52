package diff

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/soft-pages/pkg/git"
	"github.com/dustin/go-humanize/english"
)

// String returns git's summary line, e.g.
// "2 files changed, 3 insertions(+), 1 deletion(-)".
func (s Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s changed", english.Plural(s.Files, "file", ""))
	if s.Additions > 0 {
		fmt.Fprintf(&sb, ", %s(+)", english.Plural(s.Additions, "insertion", ""))
	}
	if s.Deletions > 0 {
		fmt.Fprintf(&sb, ", %s(-)", english.Plural(s.Deletions, "deletion", ""))
	}
	return sb.String()
}

// FileStats is the per file summary of a diff.
type FileStats []*FileChange

// FileStats returns the diff file stats.
func (d *Diff) FileStats() FileStats {
	return d.Files
}

// String returns a diffstat histogram followed by the summary line.
func (fs FileStats) String() string {
	return printStats(fs)
}

func printStats(stats FileStats) string {
	padLength := float64(len(" "))
	newlineLength := float64(len("\n"))
	separatorLength := float64(len("|"))
	// Soft line length limit. The text length calculation below excludes
	// length of the change number.
	lineLength := 72.0

	var longestLength float64
	var longestTotalChange float64
	for _, fc := range stats {
		if int(longestLength) < len(fc.Path) {
			longestLength = float64(len(fc.Path))
		}
		totalChange := fc.Additions() + fc.Deletions()
		if int(longestTotalChange) < totalChange {
			longestTotalChange = float64(totalChange)
		}
	}

	// <pad><filename><pad>|<pad><changeNumber><pad><+++/---><newline>
	leftTextLength := padLength + longestLength + padLength
	rightTextLength := padLength + padLength + newlineLength
	totalTextArea := leftTextLength + separatorLength + rightTextLength
	heightOfHistogram := lineLength - totalTextArea

	scaleFactor := 1.0
	if longestTotalChange > heightOfHistogram && heightOfHistogram > 0 {
		scaleFactor = longestTotalChange / heightOfHistogram
	}

	var total Stats
	total.Files = len(stats)
	var output strings.Builder
	totalDiffLines := fmt.Sprint(int(longestTotalChange))
	for _, fc := range stats {
		add, del := fc.Additions(), fc.Deletions()
		total.Additions += add
		total.Deletions += del

		name := fc.Path + strings.Repeat(" ", int(longestLength)-len(fc.Path))
		if fc.Binary {
			fmt.Fprintf(&output, " %s | Bin\n", name)
			continue
		}
		addc := max(int(math.Floor(float64(add)/scaleFactor)), 0)
		delc := max(int(math.Floor(float64(del)/scaleFactor)), 0)
		diffLines := fmt.Sprint(add + del)
		fmt.Fprintf(&output, " %s | %s %s%s\n",
			name,
			strings.Repeat(" ", len(totalDiffLines)-len(diffLines))+diffLines,
			strings.Repeat("+", addc),
			strings.Repeat("-", delc))
	}
	fmt.Fprintf(&output, " %s\n", total)

	return output.String()
}

const (
	dstPrefix = "b/"
	srcPrefix = "a/"
)

func appendPathLines(lines []string, fromPath, toPath string, isBinary bool) []string {
	if isBinary {
		return append(lines,
			fmt.Sprintf("Binary files %s and %s differ", fromPath, toPath),
		)
	}
	return append(lines,
		fmt.Sprintf("--- %s", fromPath),
		fmt.Sprintf("+++ %s", toPath),
	)
}

func writeFilePatchHeader(sb *strings.Builder, fc *FileChange) {
	var lines []string
	switch fc.Status {
	case Modified:
		lines = append(lines,
			fmt.Sprintf("diff --git %s%s %s%s", srcPrefix, fc.Path, dstPrefix, fc.Path),
		)
		if fc.OldMode != fc.NewMode {
			lines = append(lines,
				fmt.Sprintf("old mode %s", Mode(fc.OldMode)),
				fmt.Sprintf("new mode %s", Mode(fc.NewMode)),
				fmt.Sprintf("index %s..%s", fc.OldHash, fc.NewHash),
			)
		} else {
			lines = append(lines,
				fmt.Sprintf("index %s..%s %s", fc.OldHash, fc.NewHash, Mode(fc.OldMode)),
			)
		}
		lines = appendPathLines(lines, srcPrefix+fc.Path, dstPrefix+fc.Path, fc.Binary)
	case Added:
		lines = append(lines,
			fmt.Sprintf("diff --git %s %s", srcPrefix+fc.Path, dstPrefix+fc.Path),
			fmt.Sprintf("new file mode %s", Mode(fc.NewMode)),
			fmt.Sprintf("index %s..%s", git.ZeroHash, fc.NewHash),
		)
		lines = appendPathLines(lines, "/dev/null", dstPrefix+fc.Path, fc.Binary)
	case Deleted:
		lines = append(lines,
			fmt.Sprintf("diff --git %s %s", srcPrefix+fc.Path, dstPrefix+fc.Path),
			fmt.Sprintf("deleted file mode %s", Mode(fc.OldMode)),
			fmt.Sprintf("index %s..%s", fc.OldHash, git.ZeroHash),
		)
		lines = appendPathLines(lines, srcPrefix+fc.Path, "/dev/null", fc.Binary)
	}

	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func writeHunk(sb *strings.Builder, h Hunk) {
	sb.WriteString(h.Header())
	sb.WriteByte('\n')
	for _, l := range h.Lines {
		sb.WriteString(l.Op.Prefix())
		sb.WriteString(l.Text)
		if !strings.HasSuffix(l.Text, "\n") {
			sb.WriteString("\n\\ No newline at end of file\n")
		}
	}
}

// Patch returns the diff in git's unified format.
func (d *Diff) Patch() string {
	var p strings.Builder
	for _, fc := range d.Files {
		writeFilePatchHeader(&p, fc)
		for _, h := range fc.Hunks {
			writeHunk(&p, h)
		}
	}
	return p.String()
}

// FormatPatch returns the commit and its diff as an email formatted patch,
// the way git format-patch writes it.
func FormatPatch(c *git.Commit, d *Diff) string {
	var p strings.Builder
	fmt.Fprintf(&p, "From %s Mon Sep 17 00:00:00 2001\n", c.ID)
	fmt.Fprintf(&p, "From: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(&p, "Date: %s\n", c.Author.When.Format("Mon, 2 Jan 2006 15:04:05 -0700"))
	fmt.Fprintf(&p, "Subject: [PATCH] %s\n\n", c.Summary())
	if body := c.Body(); body != "" {
		p.WriteString(body)
		p.WriteString("\n")
	}
	p.WriteString("---\n")
	p.WriteString(d.FileStats().String())
	p.WriteString("\n")
	p.WriteString(d.Patch())
	return p.String()
}
