// Package query builds parameterized SQL for paginated, filtered reads.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view field names to qualified SQL columns for one table alias.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	joins   []string
	columns []string
	fields  map[string]string
}

// NewProjectionMap creates a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project maps field to alias.column.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	return p.ProjectExpr(fmt.Sprintf("%s.%s", p.alias, column), field)
}

// ProjectExpr maps field to an arbitrary SQL expression such as a joined
// column or a correlated subquery.
func (p *ProjectionMap) ProjectExpr(expr, field string) *ProjectionMap {
	p.columns = append(p.columns, expr)
	p.fields[field] = expr
	return p
}

// Join appends a join clause (e.g. "JOIN public.agents a ON a.id = m.agent_id").
func (p *ProjectionMap) Join(clause string) *ProjectionMap {
	p.joins = append(p.joins, clause)
	return p
}

func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the qualified table with alias, followed by any joins.
func (p *ProjectionMap) Table() string {
	from := fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
	if len(p.joins) == 0 {
		return from
	}
	return from + " " + strings.Join(p.joins, " ")
}

// Column resolves a field to its SQL expression. Unknown fields are returned unchanged.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return col
	}
	return field
}

// Has reports whether field is projected.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

func (p *ProjectionMap) ColumnList() []string {
	out := make([]string, len(p.columns))
	copy(out, p.columns)
	return out
}
