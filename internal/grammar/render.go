package grammar

import (
	"regexp"
	"strings"

	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/tree"
)

// tokenPattern matches %name% placeholders left after substitution. Brace
// tokens ({name}) are deliberately not matched; they pass through to the
// target engine untouched.
var tokenPattern = regexp.MustCompile(`%([A-Za-z0-9_,.-]+)%`)

// RenderCode evaluates a code template against a permutation, producing the
// identifier used for filtering. Unlike tree substitution, every referenced
// name must be bound.
func RenderCode(code string, binding map[string]any) (string, error) {
	out := substituteStrictable(code, binding)
	if tok := firstUnresolved(out); tok != "" {
		return "", &UnresolvedError{Token: tok, Context: "code"}
	}
	return out, nil
}

// RenderRecord evaluates a format template into the record's final text.
// %field% tokens naming top-level fields of the substituted tree expand to
// `"field":<compact-json>` fragments; remaining tokens resolve from the
// permutation. Any token matching neither is an error.
func RenderRecord(format string, fields map[string]any, binding map[string]any) (string, error) {
	out := format

	unused := make([]string, 0)
	for _, name := range sortedNames(fields) {
		token := "%" + name + "%"
		if !strings.Contains(out, token) {
			unused = append(unused, name)
			continue
		}
		fragment, err := tree.CompactJSON(fields[name])
		if err != nil {
			return "", err
		}
		out = strings.ReplaceAll(out, token, `"`+name+`":`+fragment)
	}
	if len(unused) > 0 {
		log.Warn(log.CatGrammar, "format leaves fields unused", "fields", strings.Join(unused, ","))
	}

	out = substituteStrictable(out, binding)
	if tok := firstUnresolved(out); tok != "" {
		return "", &UnresolvedError{Token: tok, Context: "format"}
	}
	return out, nil
}

// substituteStrictable replaces bound tokens, unquoting numeric and boolean
// values that appear as `"%name%"` so numbers land unquoted where the
// template used a string position.
func substituteStrictable(s string, binding map[string]any) string {
	for _, name := range sortedNames(binding) {
		token := "%" + name + "%"
		value := binding[name]
		literal := FormatScalar(value)
		if isNumericOrBool(value) {
			s = strings.ReplaceAll(s, `"`+token+`"`, literal)
		}
		s = strings.ReplaceAll(s, token, literal)
	}
	return s
}

// firstUnresolved returns the name of the first leftover %name% token.
func firstUnresolved(s string) string {
	if m := tokenPattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
