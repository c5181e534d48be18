package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"

	"github.com/studiowebux/inplace/internal/types"
)

// CommandTimeout bounds a $(command) query
const CommandTimeout = 30 * time.Second

var (
	commandPattern = regexp.MustCompile(`^\$\((.+)\)$`)
	bracketEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)
)

// Query narrows and reshapes a list of fields or journal entries. The filter
// is a JMESPath expression such as [?kind=='select']. The query is either
// JMESPath, e.g. [].field, or $(command), which receives the filtered list
// as JSON on stdin.
type Query struct {
	filter  *jmespath.JMESPath
	query   *jmespath.JMESPath
	command string
}

// Compile checks both expressions before any document is opened. Empty
// expressions are skipped; a nil Query means there is nothing to apply.
func Compile(filter, query string) (*Query, error) {
	if filter == "" && query == "" {
		return nil, nil
	}

	q := &Query{}
	if filter != "" {
		jp, err := jmespath.Compile(filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter '%s': %w", filter, err)
		}
		q.filter = jp
	}

	switch m := commandPattern.FindStringSubmatch(query); {
	case len(m) > 1:
		q.command = m[1]
	case query != "":
		jp, err := jmespath.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("invalid query '%s': %w", query, err)
		}
		q.query = jp
	}
	return q, nil
}

// Run applies the query to v and returns indented JSON, or the command output
func (q *Query) Run(ctx context.Context, v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("failed to decode records: %w", err)
	}

	if q.filter != nil {
		if data, err = q.filter.Search(data); err != nil {
			return "", fmt.Errorf("filter failed: %w", err)
		}
	}
	if q.query != nil {
		if data, err = q.query.Search(data); err != nil {
			return "", fmt.Errorf("query failed: %w", err)
		}
	}

	if data == nil {
		data = json.RawMessage("null")
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if q.command == "" {
		return string(out), nil
	}
	return runCommand(ctx, q.command, out)
}

func runCommand(ctx context.Context, command string, stdin []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("query command '%s' failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// FilterByKind keeps fields of ANY of the given kinds
func FilterByKind(fields []types.FieldInfo, kinds []types.Kind) []types.FieldInfo {
	if len(kinds) == 0 {
		return fields
	}

	var filtered []types.FieldInfo
	for _, f := range fields {
		for _, k := range kinds {
			if f.Kind == k {
				filtered = append(filtered, f)
				break
			}
		}
	}
	return filtered
}

// FilterByField keeps fields whose object[attribute] name matches pattern.
// The pattern uses filepath.Match syntax with literal brackets, e.g. user[*].
func FilterByField(fields []types.FieldInfo, pattern string) ([]types.FieldInfo, error) {
	if pattern == "" {
		return fields, nil
	}
	pattern = bracketEscaper.Replace(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid field pattern '%s': %w", pattern, err)
	}

	var filtered []types.FieldInfo
	for _, f := range fields {
		if ok, _ := filepath.Match(pattern, f.Field); ok {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}
