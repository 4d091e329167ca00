package openapi

import (
	"strconv"
	"strings"

	"github.com/strutkit/strut/route"
)

// integerPatterns is the small set of capture-group bodies inferred as
// integer path parameters. Anything else defaults to string.
var integerPatterns = map[string]bool{
	`\d`: true, `\d+`: true, `\d*`: true,
	`[0-9]`: true, `[0-9]+`: true, `[0-9]*`: true,
}

// groupSpan is the byte span of one top-level capture group, including the
// surrounding parentheses.
type groupSpan struct {
	start, end int
}

// ConvertPath translates a regex route pattern into an OpenAPI path template
// and the ordered list of path parameters, one per top-level capture group.
// Parameter names come from the positional pool (id, param1, ...); types are
// inferred from the group body. Malformed patterns are not validated; the
// scan produces whatever it produces.
func ConvertPath(pattern string) (string, []*Parameter) {
	groups := topLevelGroups(pattern)

	params := make([]*Parameter, 0, len(groups))
	names := make([]string, 0, len(groups))

	for i, g := range groups {
		inner := pattern[g.start+1 : g.end-1]
		name := route.ParamName(i)
		names = append(names, name)

		params = append(params, &Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema:   &Schema{Type: inferParamType(inner)},
		})
	}

	// Replace group spans in reverse offset order so earlier replacements
	// don't invalidate later spans.
	path := pattern
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		path = path[:g.start] + "{" + names[i] + "}" + path[g.end:]
	}

	path = stripMetachars(path, names)

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path, params
}

// inferParamType returns the OpenAPI type for a capture-group body.
func inferParamType(inner string) string {
	trimmed := strings.TrimPrefix(inner, "^")
	trimmed = strings.TrimSuffix(trimmed, "$")
	if integerPatterns[trimmed] {
		return "integer"
	}
	return "string"
}

// topLevelGroups scans the pattern for top-level parenthesized groups,
// skipping escaped parentheses and character classes.
func topLevelGroups(pattern string) []groupSpan {
	var (
		groups  []groupSpan
		depth   int
		start   int
		inClass bool
		escaped bool
	)

	for i := 0; i < len(pattern); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch pattern[i] {
		case '\\':
			escaped = true
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass {
				if depth == 0 {
					start = i
				}
				depth++
			}
		case ')':
			if !inClass && depth > 0 {
				depth--
				if depth == 0 {
					groups = append(groups, groupSpan{start: start, end: i + 1})
				}
			}
		}
	}

	return groups
}

// metachars are the regex metacharacters stripped from the converted path.
// Dots are preserved because they are valid in OpenAPI paths ("/users.json").
const metachars = `*+?^$()|[]\`

// stripMetachars removes remaining regex metacharacters from the path while
// protecting the inserted {name} tokens with a placeholder-and-restore pass.
func stripMetachars(path string, names []string) string {
	for i, name := range names {
		path = strings.Replace(path, "{"+name+"}", "\x00"+strconv.Itoa(i)+"\x00", 1)
	}

	path = strings.Map(func(r rune) rune {
		if strings.ContainsRune(metachars, r) {
			return -1
		}
		return r
	}, path)

	for i, name := range names {
		path = strings.Replace(path, "\x00"+strconv.Itoa(i)+"\x00", "{"+name+"}", 1)
	}

	return path
}
