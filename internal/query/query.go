// Package query parses the listing filter language and evaluates it both
// in memory and as a SQL predicate for the document store.
//
// The grammar is a conjunction of comparisons:
//
//	query  = clause { "and" clause }
//	clause = field op value
//	field  = "name" | "mimeType" | "fileExtension" | "typeTag"
//	op     = "=" | "!=" | "contains"
//	value  = "'" { char | "\'" } "'"
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Project-Sylos/Specular/internal/types"
)

// ErrSyntax is returned for malformed queries
var ErrSyntax = errors.New("query syntax error")

// Field is a filterable node attribute
type Field string

// Supported fields
const (
	FieldName      Field = "name"
	FieldMimeType  Field = "mimeType"
	FieldExtension Field = "fileExtension"
	FieldTypeTag   Field = "typeTag"
)

// Op is a comparison operator
type Op string

// Supported operators
const (
	OpEqual    Op = "="
	OpNotEqual Op = "!="
	OpContains Op = "contains"
)

var columns = map[Field]string{
	FieldName:      "name",
	FieldMimeType:  "mime_type",
	FieldExtension: "extension",
	FieldTypeTag:   "type_tag",
}

// Clause is a single comparison
type Clause struct {
	Field Field
	Op    Op
	Value string
}

// Filter is a parsed query. A nil *Filter matches every node.
type Filter struct {
	Clauses []Clause
	raw     string
}

// Parse parses a query string. An empty or blank query yields a nil filter.
func Parse(s string) (*Filter, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	f := &Filter{raw: strings.TrimSpace(s)}
	for i := 0; i < len(toks); {
		if len(f.Clauses) > 0 {
			if toks[i].kind != tokWord || !strings.EqualFold(toks[i].text, "and") {
				return nil, fmt.Errorf("%w: expected 'and' at offset %d, got %q", ErrSyntax, toks[i].pos, toks[i].text)
			}
			i++
		}
		if i+3 > len(toks) {
			return nil, fmt.Errorf("%w: incomplete clause at end of query", ErrSyntax)
		}

		field, op, val := toks[i], toks[i+1], toks[i+2]
		if field.kind != tokWord {
			return nil, fmt.Errorf("%w: expected field at offset %d", ErrSyntax, field.pos)
		}
		if _, ok := columns[Field(field.text)]; !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrSyntax, field.text)
		}

		var o Op
		switch {
		case op.kind == tokOp:
			o = Op(op.text)
		case op.kind == tokWord && strings.EqualFold(op.text, "contains"):
			o = OpContains
		default:
			return nil, fmt.Errorf("%w: expected operator at offset %d, got %q", ErrSyntax, op.pos, op.text)
		}

		if val.kind != tokString {
			return nil, fmt.Errorf("%w: expected quoted value at offset %d", ErrSyntax, val.pos)
		}

		f.Clauses = append(f.Clauses, Clause{Field: Field(field.text), Op: o, Value: val.text})
		i += 3
	}

	return f, nil
}

// String returns the query text the filter was parsed from
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.raw
}

// Matches reports whether the node satisfies every clause
func (f *Filter) Matches(n *types.Node) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Clauses {
		if !c.matches(n) {
			return false
		}
	}
	return true
}

func (c Clause) matches(n *types.Node) bool {
	var got string
	switch c.Field {
	case FieldName:
		got = n.Name
	case FieldMimeType:
		got = n.MimeType
	case FieldExtension:
		got = n.Extension
	case FieldTypeTag:
		got = string(n.TypeTag)
	}

	switch c.Op {
	case OpEqual:
		return got == c.Value
	case OpNotEqual:
		return got != c.Value
	case OpContains:
		return strings.Contains(got, c.Value)
	}
	return false
}

// SQL renders the filter as a parameterized predicate over the given table alias.
// A nil filter renders as "TRUE".
func (f *Filter) SQL(alias string) (string, []any) {
	if f == nil || len(f.Clauses) == 0 {
		return "TRUE", nil
	}

	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	parts := make([]string, 0, len(f.Clauses))
	args := make([]any, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		col := prefix + columns[c.Field]
		switch c.Op {
		case OpEqual:
			parts = append(parts, col+" = ?")
		case OpNotEqual:
			parts = append(parts, col+" <> ?")
		case OpContains:
			parts = append(parts, "contains("+col+", ?)")
		}
		args = append(args, c.Value)
	}
	return "(" + strings.Join(parts, " AND ") + ")", args
}
