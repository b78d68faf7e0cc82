// Package query composes parameterized SQL from untrusted filter, sort and
// pagination input. Values are always bound through positional
// placeholders; only allow-listed column expressions reach the SQL text.
package query

import (
	"strings"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts asc/desc in any case and falls back to Desc.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc
	default:
		return Desc
	}
}

// SortColumns maps request sort keys to trusted column expressions.
type SortColumns map[string]string

// Builder accumulates (predicate, args) pairs. Predicates use "?" for every
// bound value.
type Builder struct {
	predicates []string
	args       []any
	orderCol   string
	orderDir   Direction
	tiebreak   string
	page       *Page
}

func New() *Builder {
	return &Builder{orderDir: Desc}
}

// Where adds a predicate ANDed with the others.
func (b *Builder) Where(predicate string, args ...any) *Builder {
	b.predicates = append(b.predicates, predicate)
	b.args = append(b.args, args...)
	return b
}

// WhereIf adds the predicate only when cond holds.
func (b *Builder) WhereIf(cond bool, predicate string, args ...any) *Builder {
	if cond {
		return b.Where(predicate, args...)
	}
	return b
}

// Search matches term as a case-insensitive substring of any column.
// LIKE metacharacters in term are not escaped, so "%" and "_" act as
// wildcards.
func (b *Builder) Search(term string, columns ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return b
	}

	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return b.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// OrderBy resolves requested against allowed. Unknown keys fall back to the
// fallback key instead of failing.
func (b *Builder) OrderBy(requested string, dir Direction, allowed SortColumns, fallback string) *Builder {
	col, ok := allowed[strings.TrimSpace(requested)]
	if !ok {
		col = allowed[fallback]
	}
	b.orderCol = col
	if dir != Asc {
		dir = Desc
	}
	b.orderDir = dir
	return b
}

// Tiebreak adds a unique column after the sort column so pages are stable.
func (b *Builder) Tiebreak(col string) *Builder {
	b.tiebreak = col
	return b
}

func (b *Builder) Paginate(p Page) *Builder {
	b.page = &p
	return b
}

// WhereClause renders " WHERE ..." (with leading space) or "".
func (b *Builder) WhereClause() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}
	args := make([]any, len(b.args))
	copy(args, b.args)
	return " WHERE " + strings.Join(b.predicates, " AND "), args
}

// Select renders the row query: filters, ordering, then LIMIT/OFFSET bound
// as the last two parameters.
func (b *Builder) Select(columns, from string) (string, []any) {
	where, args := b.WhereClause()

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(columns)
	sb.WriteString(" FROM ")
	sb.WriteString(from)
	sb.WriteString(where)

	if b.orderCol != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderCol)
		sb.WriteString(" ")
		sb.WriteString(string(b.orderDir))
		if b.tiebreak != "" && b.tiebreak != b.orderCol {
			sb.WriteString(", ")
			sb.WriteString(b.tiebreak)
			sb.WriteString(" ")
			sb.WriteString(string(b.orderDir))
		}
	}

	if b.page != nil {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.page.Limit, b.page.Offset())
	}

	return sb.String(), args
}

// Count renders a COUNT(*) over the same predicates, without ordering or
// limits.
func (b *Builder) Count(from string) (string, []any) {
	where, args := b.WhereClause()
	return "SELECT COUNT(*) FROM " + from + where, args
}
