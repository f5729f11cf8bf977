package store

import (
	"context"
	"fmt"
	"strings"
)

// Predicate filters stored units. Predicates compile to parameterized SQL;
// values are never interpolated.
type Predicate interface {
	predicateNode()
}

// Equals matches units whose Field equals Value. Text fields compare
// case-insensitively.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// In matches units whose Field is one of Values. An empty In matches nothing.
type In struct {
	Field  string
	Values []any
}

func (In) predicateNode() {}

// And is the conjunction of its predicates. An empty And matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is the disjunction of its predicates. An empty Or matches nothing.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// unitColumns lists the filterable columns and whether they hold text.
var unitColumns = map[string]bool{
	"id":             true,
	"symbol":         true,
	"name":           true,
	"plural":         true,
	"quantity":       true,
	"dimensionality": true,
	"scale":          false,
	"prefixes":       false,
	"seq":            false,
}

// CompileFilter converts a predicate over the units table to a SELECT with
// its parameters. Every query orders by seq, then id, so results are stable.
func CompileFilter(p Predicate) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT id, symbol, name, plural, quantity, dimensionality, scale, prefixes, seq FROM units`)

	var params []any
	if p != nil {
		where, whereParams, err := compilePredicate(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY seq ASC, id COLLATE BINARY ASC")
	return b.String(), params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case In:
		return compileIn(pred)
	case *In:
		return compileIn(*pred)
	case And:
		return compileJunction(pred.Predicates, " AND ", "1 = 1")
	case *And:
		return compileJunction(pred.Predicates, " AND ", "1 = 1")
	case Or:
		return compileJunction(pred.Predicates, " OR ", "1 = 0")
	case *Or:
		return compileJunction(pred.Predicates, " OR ", "1 = 0")
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func column(field string) (string, error) {
	text, ok := unitColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}
	if text {
		return field + " COLLATE NOCASE", nil
	}
	return field, nil
}

func compileEquals(eq Equals) (string, []any, error) {
	col, err := column(eq.Field)
	if err != nil {
		return "", nil, err
	}
	return col + " = ?", []any{eq.Value}, nil
}

func compileIn(in In) (string, []any, error) {
	col, err := column(in.Field)
	if err != nil {
		return "", nil, err
	}
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(in.Values)), ", ")
	return fmt.Sprintf("%s IN (%s)", col, placeholders), append([]any(nil), in.Values...), nil
}

func compileJunction(preds []Predicate, sep, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	parts := make([]string, 0, len(preds))
	var params []any
	for _, pred := range preds {
		sql, predParams, err := compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		params = append(params, predParams...)
	}
	return strings.Join(parts, sep), params, nil
}

// FindUnits returns the stored units matching p in definition order. A nil
// predicate matches every unit.
func (s *Store) FindUnits(ctx context.Context, p Predicate) ([]Record, error) {
	query, params, err := CompileFilter(p)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}
	return records, nil
}
