package shapes

import (
	"encoding/json"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffPreview renders a colored diff between a shape and its mutated copy,
// used by dry runs to show what would be written.
func DiffPreview(before, after map[string]any) (string, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing original shape: %w", err)
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing mutated shape: %w", err)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(a), string(b), true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs), nil
}
