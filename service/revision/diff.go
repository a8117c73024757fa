package revision

import (
	"github.com/pmezard/go-difflib/difflib"
)

// contentDiff produces a unified diff between the previous and the revised
// artifact so the audit chain shows what each resubmission changed. An empty
// string is returned when the contents are identical.
func contentDiff(previous, revised, title string) (string, error) {
	if previous == revised {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(revised),
		FromFile: title + " (previous)",
		ToFile:   title + " (revised)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
