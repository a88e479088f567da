package filter

import "strings"

// Column is a records table column that may appear in a predicate.
// Only the constants below exist, so query text never contains caller input.
type Column string

const (
	ColType         Column = "type"
	ColJobTitle     Column = "job_title"
	ColCompanyName  Column = "company_name"
	ColLocation     Column = "location"
	ColIndustry     Column = "industry"
	ColDomain       Column = "domain"
	ColEmployeeSize Column = "employee_size"
	ColHeadquarters Column = "headquarters"
	ColTimestamp    Column = "timestamp"
)

type Op int

const (
	OpEq Op = iota
	OpIn
	OpContains
	OpDateGTE
	OpDateLTE
)

// Clause matches when any of Columns satisfies Op against Values.
type Clause struct {
	Columns []Column
	Op      Op
	Values  []string
}

// Builder accumulates clauses that are AND-ed together.
type Builder struct {
	clauses []Clause
}

func (b *Builder) add(op Op, values []string, cols ...Column) {
	b.clauses = append(b.clauses, Clause{Columns: cols, Op: op, Values: values})
}

func (b *Builder) Eq(col Column, v string) { b.add(OpEq, []string{v}, col) }

// In adds a membership test. Extra columns are OR-ed: a value matching any
// of them qualifies. An empty list adds nothing.
func (b *Builder) In(col Column, values []string, more ...Column) {
	if len(values) == 0 {
		return
	}
	b.add(OpIn, values, append([]Column{col}, more...)...)
}

func (b *Builder) Contains(col Column, sub string) { b.add(OpContains, []string{sub}, col) }

func (b *Builder) DateOnOrAfter(col Column, day string)  { b.add(OpDateGTE, []string{day}, col) }
func (b *Builder) DateOnOrBefore(col Column, day string) { b.add(OpDateLTE, []string{day}, col) }

// Build renders "WHERE ..." with one positional ? per bound value.
func (b *Builder) Build() (string, []any) {
	if len(b.clauses) == 0 {
		return "", nil
	}
	var (
		parts []string
		args  []any
	)
	for _, c := range b.clauses {
		var ors []string
		for _, col := range c.Columns {
			frag, vals := c.render(col)
			ors = append(ors, frag)
			args = append(args, vals...)
		}
		if len(ors) == 1 {
			parts = append(parts, ors[0])
		} else {
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

func (c Clause) render(col Column) (string, []any) {
	name := string(col)
	switch c.Op {
	case OpIn:
		ph := strings.TrimSuffix(strings.Repeat("?,", len(c.Values)), ",")
		args := make([]any, len(c.Values))
		for i, v := range c.Values {
			args[i] = v
		}
		return name + " IN (" + ph + ")", args
	case OpContains:
		// SQLite LIKE is case-insensitive for ASCII.
		return name + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(c.Values[0]) + "%"}
	case OpDateGTE:
		return "DATE(" + name + ") >= DATE(?)", []any{c.Values[0]}
	case OpDateLTE:
		return "DATE(" + name + ") <= DATE(?)", []any{c.Values[0]}
	default:
		return name + " = ?", []any{c.Values[0]}
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
