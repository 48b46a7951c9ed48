package postgres

import (
	"fmt"
	"strings"
)

// where accumulates WHERE clauses and their positional arguments.
type where struct {
	clauses []string
	args    []any
}

// arg appends v to the argument list and returns its placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

// eq adds "col = $n" unless v is empty.
func (w *where) eq(col, v string) {
	if v != "" {
		w.add(col + " = " + w.arg(v))
	}
}

// in adds "col IN ($n, ...)" unless vals is empty.
func in[T ~string](w *where, col string, vals []T) {
	if len(vals) > 0 {
		w.add(col + " IN (" + list(w, vals) + ")")
	}
}

// list binds every value and returns the comma separated placeholders.
func list[T ~string](w *where, vals []T) string {
	placeholders := make([]string, len(vals))
	for i, v := range vals {
		placeholders[i] = w.arg(string(v))
	}
	return strings.Join(placeholders, ", ")
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT/OFFSET to query.
func (w *where) page(query string, limit, offset int) string {
	if limit > 0 {
		query += " LIMIT " + w.arg(limit)
	}
	if offset > 0 {
		query += " OFFSET " + w.arg(offset)
	}
	return query
}

// prefixed qualifies every column of a column list with alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
