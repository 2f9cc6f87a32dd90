package coordinator

import (
	"regexp"
	"strings"
)

var fenceRE = regexp.MustCompile("(?s)```[a-zA-Z0-9_+.-]*[ \t]*\n(.*?)```")

// Clean normalizes raw model output into file content. When the response
// wraps the content in a fenced code block, the body of the first block is
// extracted; either way the result carries no surrounding whitespace.
func Clean(raw string) string {
	if m := fenceRE.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}
