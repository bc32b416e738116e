package conversation

import (
	"regexp"
	"strings"
)

var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// SplitReasoning separates a model response into the user-visible answer
// and the embedded reasoning trace. Some models wrap internal deliberation
// in <think>...</think> markers; those segments are stripped from the
// visible answer and the first one is returned as the trace. A response
// without markers is returned whole with an empty trace.
func SplitReasoning(text string) (visible, reasoning string) {
	matches := thinkPattern.FindStringSubmatch(text)
	visible = strings.TrimSpace(thinkPattern.ReplaceAllString(text, ""))
	if len(matches) > 1 {
		reasoning = strings.TrimSpace(matches[1])
	}
	return visible, reasoning
}
