package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
)

// ShowOptions contains options for printing a document
type ShowOptions struct {
	DocumentOptions
	FieldsOnly bool   // print the markup of each field instead of the whole page
	Style      string // chroma style name
	Formatter  string // chroma formatter name, "noop" disables colors
}

// Show prints a document with syntax highlighting
func Show(ctx context.Context, w io.Writer, opts ShowOptions) error {
	style := opts.Style
	if style == "" {
		style = "monokai"
	}
	formatter := opts.Formatter
	if formatter == "" {
		formatter = "terminal256"
	}

	if !opts.FieldsOnly {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		return quick.Highlight(w, string(data), "html", formatter, style)
	}

	sess, stop, err := open(ctx, opts.DocumentOptions)
	if err != nil {
		return err
	}
	defer stop()

	for i, f := range sess.Fields() {
		markup, err := sess.Markup(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s# %s (%s)%s\n", colorYellow, f.Field, f.Kind, colorReset)
		if err := quick.Highlight(w, markup+"\n", "html", formatter, style); err != nil {
			return err
		}
	}
	return nil
}
