package grammar

import "fmt"

// SchemaError reports a missing or malformed required field in a grammar or
// template definition.
type SchemaError struct {
	Field   string
	Context string
}

func (e *SchemaError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: missing or invalid field %q", e.Context, e.Field)
	}
	return fmt.Sprintf("missing or invalid field %q", e.Field)
}

// UnknownTemplateError reports a grammar referencing a template that was
// never declared.
type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Name)
}

// CycleError reports a copyFrom chain that revisits a node, for templates or
// grammar entries.
type CycleError struct {
	Kind string // "template" or "grammar"
	Name string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic %s inheritance at %q", e.Kind, e.Name)
}

// ArityError reports a grouped-key value whose tuple length does not match
// the number of grouped names.
type ArityError struct {
	Key  string
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("key %q declares %d names but a value provides %d entries", e.Key, e.Want, e.Got)
}

// UnresolvedError reports a code or format template referencing a name bound
// neither by the permutation nor by the record's fields.
type UnresolvedError struct {
	Token   string
	Context string
}

func (e *UnresolvedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: unresolved placeholder %%%s%%", e.Context, e.Token)
	}
	return fmt.Sprintf("unresolved placeholder %%%s%%", e.Token)
}

// GlobError reports a malformed allow/skip wildcard pattern.
type GlobError struct {
	Pattern string
}

func (e *GlobError) Error() string {
	return fmt.Sprintf("malformed wildcard pattern %q", e.Pattern)
}
