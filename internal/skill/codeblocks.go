package skill

import (
	"fmt"
	"regexp"
	"strings"
)

// Fenced code blocks are lifted out before a model call and restored
// afterwards, so transformations can never alter code.
var fenceRE = regexp.MustCompile("(?s)```.*?```")

const fencePlaceholder = "__CODE_BLOCK_%d__"

// extractFences replaces each fenced code block with a numbered
// placeholder and returns the blocks in order.
func extractFences(content string) (string, []string) {
	var blocks []string
	replaced := fenceRE.ReplaceAllStringFunc(content, func(block string) string {
		placeholder := fmt.Sprintf(fencePlaceholder, len(blocks))
		blocks = append(blocks, block)
		return placeholder
	})
	return replaced, blocks
}

// restoreFences puts the original code blocks back. Placeholders the
// model dropped are appended at the end so no code is ever lost.
func restoreFences(content string, blocks []string) string {
	var missing []string
	for i, block := range blocks {
		placeholder := fmt.Sprintf(fencePlaceholder, i)
		if strings.Contains(content, placeholder) {
			content = strings.Replace(content, placeholder, block, 1)
		} else {
			missing = append(missing, block)
		}
	}
	if len(missing) > 0 {
		content = strings.TrimRight(content, "\n") + "\n\n" + strings.Join(missing, "\n\n")
	}
	return content
}
