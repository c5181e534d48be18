package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// highlight colours source for the terminal. The plain text is returned when
// the lexer or style is unknown.
func highlight(source, lexer string) string {
	var sb strings.Builder
	if err := quick.Highlight(&sb, source, lexer, "terminal256", "monokai"); err != nil {
		return source
	}
	return sb.String()
}
