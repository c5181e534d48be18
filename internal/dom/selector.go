package dom

import (
	"fmt"
	"strings"
)

// ToXPath translates a CSS selector subset into an XPath expression.
// Supported: *, tag, #id, .class, [attr], [attr=value], descendant combinator.
// XPath input ("/...", "./...", "(...") is returned unchanged.
func ToXPath(css string) (string, error) {
	css = strings.TrimSpace(css)
	if css == "" {
		return "", fmt.Errorf("empty selector")
	}
	if strings.HasPrefix(css, "/") || strings.HasPrefix(css, "./") || strings.HasPrefix(css, "(") {
		return css, nil
	}

	var xpath strings.Builder
	for _, part := range strings.Fields(css) {
		xpath.WriteString("//")
		step, err := compoundToXPath(part)
		if err != nil {
			return "", fmt.Errorf("invalid selector %q: %w", css, err)
		}
		xpath.WriteString(step)
	}
	return xpath.String(), nil
}

func compoundToXPath(part string) (string, error) {
	tag := "*"
	var predicates []string

	rest := part
	if i := strings.IndexAny(rest, "#.["); i != 0 {
		if i == -1 {
			i = len(rest)
		}
		tag = strings.ToLower(rest[:i])
		rest = rest[i:]
	}

	for len(rest) > 0 {
		switch rest[0] {
		case '#', '.':
			end := strings.IndexAny(rest[1:], "#.[")
			if end == -1 {
				end = len(rest)
			} else {
				end++
			}
			name := rest[1:end]
			if name == "" || strings.ContainsAny(name, `'"`) {
				return "", fmt.Errorf("bad name in %q", part)
			}
			if rest[0] == '#' {
				predicates = append(predicates, fmt.Sprintf("@id='%s'", name))
			} else {
				predicates = append(predicates, fmt.Sprintf("contains(concat(' ', normalize-space(@class), ' '), ' %s ')", name))
			}
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("unterminated attribute selector in %q", part)
			}
			pred, err := attrPredicate(rest[1:end])
			if err != nil {
				return "", err
			}
			predicates = append(predicates, pred)
			rest = rest[end+1:]
		default:
			return "", fmt.Errorf("unexpected %q in %q", rest[0], part)
		}
	}

	if len(predicates) == 0 {
		return tag, nil
	}
	return tag + "[" + strings.Join(predicates, " and ") + "]", nil
}

func attrPredicate(body string) (string, error) {
	name, value, hasValue := strings.Cut(body, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty attribute name")
	}
	if !hasValue {
		return "@" + name, nil
	}
	value = strings.Trim(strings.TrimSpace(value), `'"`)
	if strings.Contains(value, "'") {
		return "", fmt.Errorf("quote in attribute value %q", value)
	}
	return fmt.Sprintf("@%s='%s'", name, value), nil
}

// scoped rewrites an absolute descendant path so it is evaluated below the context node
func scoped(xpath string) string {
	if strings.HasPrefix(xpath, "//") {
		return "." + xpath
	}
	return xpath
}
