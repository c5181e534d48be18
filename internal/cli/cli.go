package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/filter"
	"github.com/studiowebux/inplace/internal/history"
	"github.com/studiowebux/inplace/internal/inplace"
	"github.com/studiowebux/inplace/internal/session"
	"github.com/studiowebux/inplace/internal/transport"
	"github.com/studiowebux/inplace/internal/types"
)

// ErrUpdateFailed is returned when the server rejected a commit
var ErrUpdateFailed = errors.New("update failed")

// DocumentOptions locates a document and the endpoint its fields post to
type DocumentOptions struct {
	Path     string
	Location string // document URL relative data-bip-url values resolve against
	Defaults config.Defaults
	Journal  transport.Journal
	Logger   *zap.Logger
}

// open starts a session over the document. The returned stop function ends
// it and waits for the loop to exit.
func open(ctx context.Context, opts DocumentOptions) (*session.Session, func(), error) {
	sess, err := session.Open(opts.Path, session.Options{
		Location: opts.Location,
		Defaults: opts.Defaults,
		Journal:  opts.Journal,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, nil, err
	}

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	stop := func() {
		sess.Stop()
		if err := <-done; err != nil && opts.Logger != nil {
			opts.Logger.Warn("session ended with error", zap.Error(err))
		}
	}
	return sess, stop, nil
}

// FieldsOptions contains options for listing the fields of a document
type FieldsOptions struct {
	DocumentOptions
	Kinds  []string
	Field  string // glob over object[attribute]
	Filter string // JMESPath filter expression
	Query  string // JMESPath query or $(shell command)
	Output string // text, json, yaml
}

// Fields lists the editable fields of a document
func Fields(ctx context.Context, w io.Writer, opts FieldsOptions) error {
	query, err := filter.Compile(opts.Filter, opts.Query)
	if err != nil {
		return err
	}

	sess, stop, err := open(ctx, opts.DocumentOptions)
	if err != nil {
		return err
	}
	fields := sess.Fields()
	attachErr := sess.AttachErr()
	stop()

	if attachErr != nil {
		fmt.Fprintf(os.Stderr, "%sWarning: %v%s\n", colorYellow, attachErr, colorReset)
	}

	if len(opts.Kinds) > 0 {
		kinds := make([]types.Kind, 0, len(opts.Kinds))
		for _, k := range opts.Kinds {
			kind, err := types.ParseKind(k)
			if err != nil {
				return err
			}
			kinds = append(kinds, kind)
		}
		fields = filter.FilterByKind(fields, kinds)
	}
	if opts.Field != "" {
		if fields, err = filter.FilterByField(fields, opts.Field); err != nil {
			return err
		}
	}

	if query != nil {
		out, err := query.Run(ctx, fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}

	switch opts.Output {
	case "json":
		return writeJSON(w, fields)
	case "yaml":
		return writeYAML(w, fields)
	}

	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		value := f.Value
		if f.Nil {
			value = ""
		}
		rows = append(rows, []string{f.Field, string(f.Kind), value, f.Display, f.URL})
	}
	fmt.Fprintln(w, renderTable([]string{"FIELD", "KIND", "VALUE", "DISPLAY", "URL"}, rows))
	return nil
}

// SetOptions contains options for committing one field without the TUI
type SetOptions struct {
	DocumentOptions
	Field   string
	Value   string
	HasVal  bool
	OutPath string
	Wait    time.Duration
}

// Set commits a value through the field's widget and writes the updated
// document. A missing field or value is prompted for.
func Set(ctx context.Context, w io.Writer, opts SetOptions) error {
	sess, stop, err := open(ctx, opts.DocumentOptions)
	if err != nil {
		return err
	}
	defer stop()

	fields := sess.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("no editable fields in %s", opts.Path)
	}

	idx := -1
	if opts.Field == "" {
		if !isInteractive() {
			return fmt.Errorf("no field given")
		}
		if idx, err = promptForField(fields); err != nil {
			return err
		}
	} else {
		for i, f := range fields {
			if f.Field == opts.Field || f.ID == opts.Field {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("field not found: %s", opts.Field)
		}
	}
	field := fields[idx]

	value := opts.Value
	if !opts.HasVal && field.Kind != types.KindCheckbox {
		if !isInteractive() {
			return fmt.Errorf("no value given for %s", field.Field)
		}
		if field.Kind == types.KindSelect {
			value, err = promptForOption(field)
		} else {
			value, err = promptForValue(field.Field, field.Value)
		}
		if err != nil {
			return err
		}
	}

	if err := sess.Activate(idx); err != nil {
		return err
	}
	if field.Kind != types.KindCheckbox {
		if err := sess.Submit(value); err != nil {
			return err
		}
	}

	wait := opts.Wait
	if wait <= 0 {
		wait = 30 * time.Second
	}
	n, err := awaitOutcome(ctx, sess, wait)
	if err != nil {
		return err
	}

	switch n.Type {
	case inplace.EventSuccess:
		updated := sess.Fields()[idx]
		fmt.Fprintf(w, "%s%s%s = %s\n", colorGreen, updated.Field, colorReset, updated.Display)
	case inplace.EventAbort:
		fmt.Fprintf(w, "%s unchanged\n", field.Field)
		return nil
	default:
		fmt.Fprintf(w, "%s%s: %v%s\n", colorRed, field.Field, n.Err, colorReset)
		return fmt.Errorf("%w: %v", ErrUpdateFailed, n.Err)
	}

	if opts.OutPath == "" {
		return nil
	}
	if err := sess.Save(opts.OutPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Document saved to %s\n", opts.OutPath)
	return nil
}

// awaitOutcome waits for the commit started by Set to settle
func awaitOutcome(ctx context.Context, sess *session.Session, wait time.Duration) (session.Notice, error) {
	timeout := time.NewTimer(wait)
	defer timeout.Stop()
	for {
		select {
		case n := <-sess.Notices():
			switch n.Type {
			case inplace.EventSuccess, inplace.EventError, inplace.EventAbort:
				return n, nil
			}
		case <-timeout.C:
			return session.Notice{}, fmt.Errorf("no reply within %s", wait)
		case <-ctx.Done():
			return session.Notice{}, ctx.Err()
		}
	}
}

// HistoryOptions contains options for reading the update journal
type HistoryOptions struct {
	history.Filter
	Query  string
	Output string
	Export string
}

// JournalReader loads journal entries
type JournalReader interface {
	Load(f history.Filter) ([]types.JournalEntry, error)
}

// History prints or exports journal entries, newest first
func History(w io.Writer, journal JournalReader, opts HistoryOptions) error {
	query, err := filter.Compile("", opts.Query)
	if err != nil {
		return err
	}

	entries, err := journal.Load(opts.Filter)
	if err != nil {
		return err
	}

	if opts.Export != "" {
		if err := history.Export(entries, opts.Export); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), opts.Export)
		return nil
	}

	if query != nil {
		out, err := query.Run(context.Background(), entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}

	switch opts.Output {
	case "json":
		return writeJSON(w, entries)
	case "yaml":
		return writeYAML(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No updates recorded")
		return nil
	}
	for _, e := range entries {
		status := fmt.Sprint(e.Status)
		if e.Status == 0 {
			status = "---"
		}
		fmt.Fprintf(w, "%s  %s%s%s  %-6s %-24s %q  %s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			getStatusColor(e.Status), status, colorReset,
			strings.ToUpper(e.Method),
			e.Field,
			e.Value,
			transport.FormatDuration(e.DurationMs),
		)
		if e.Error != "" {
			fmt.Fprintf(w, "  %s%s%s", colorRed, e.Error, colorReset)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("241"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

func getStatusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return colorGreen
	case status >= 300 && status < 400:
		return colorYellow
	default:
		return colorRed
	}
}

// StatsReader aggregates the journal per field
type StatsReader interface {
	StatsPerField(document string) ([]history.Stats, error)
}

// HistoryStats prints per-field update statistics
func HistoryStats(w io.Writer, stats StatsReader, document, output string) error {
	list, err := stats.StatsPerField(document)
	if err != nil {
		return err
	}

	switch output {
	case "json":
		return writeJSON(w, list)
	case "yaml":
		return writeYAML(w, list)
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No updates recorded")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.Document,
			s.Field,
			fmt.Sprint(s.TotalUpdates),
			fmt.Sprintf("%.0f%%", s.SuccessRate()),
			fmt.Sprint(s.ErrorCount),
			transport.FormatDuration(int64(s.AvgDurationMs)),
			transport.FormatDuration(s.MaxDurationMs),
			s.LastUpdated.Local().Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"DOCUMENT", "FIELD", "UPDATES", "OK", "FAILED", "AVG", "MAX", "LAST"}, rows))
	return nil
}
