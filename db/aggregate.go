package db

import (
	"fmt"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/sql"
	"github.com/coraldb/coraldb/storage"
)

// group is one GROUP BY bucket: every row sharing a key, plus a sample
// row the group-key columns are read from.
type group struct {
	key    string
	sample rowView
	rows   []rowView
}

// groupRows buckets rows by the GROUP BY columns, preserving the order
// in which groups first appear. Without GROUP BY the whole input forms
// a single group, even when empty.
func groupRows(rows []rowView, groupBy []sql.ColumnRef, src *rowSource) ([]*group, error) {
	if len(groupBy) == 0 {
		return []*group{{rows: rows}}, nil
	}

	positions := make([]int, len(groupBy))
	for i, column := range groupBy {
		pos, err := src.columnPosition(column)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}

	var groups []*group
	index := make(map[string]*group)
	for _, row := range rows {
		key := ""
		for _, pos := range positions {
			key += row.values[pos].Key() + "\x00"
		}
		g, ok := index[key]
		if !ok {
			g = &group{key: key, sample: row}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	return groups, nil
}

// computeAggregate evaluates one aggregate call over a group's rows.
// NULL inputs are skipped; an empty input yields NULL for everything
// but COUNT.
func computeAggregate(agg sql.AggregateExpr, rows []rowView, src *rowSource) (core.Value, error) {
	if agg.Star {
		return core.NewInt(int64(len(rows))), nil
	}

	pos, err := src.columnPosition(agg.Column)
	if err != nil {
		return core.Value{}, err
	}
	column := src.columns[pos].column

	switch agg.Func {
	case sql.AggCount:
		count := int64(0)
		for _, row := range rows {
			if !row.values[pos].IsNull() {
				count++
			}
		}
		return core.NewInt(count), nil

	case sql.AggSum, sql.AggAvg:
		if column.Type != core.IntType && column.Type != core.FloatType {
			return core.Value{}, storage.TypeMismatchError{
				Table:  src.columns[pos].table,
				Column: column.Name,
				Want:   "INT or FLOAT",
				Got:    column.Type.String(),
			}
		}
		sum := 0.0
		count := 0
		for _, row := range rows {
			if n, ok := row.values[pos].Numeric(); ok {
				sum += n
				count++
			}
		}
		if count == 0 {
			return core.Null(), nil
		}
		if agg.Func == sql.AggAvg {
			return core.NewFloat(sum / float64(count)), nil
		}
		if column.Type == core.IntType {
			return core.NewInt(int64(sum)), nil
		}
		return core.NewFloat(sum), nil

	case sql.AggMin, sql.AggMax:
		best := core.Null()
		for _, row := range rows {
			value := row.values[pos]
			if value.IsNull() {
				continue
			}
			if best.IsNull() {
				best = value
				continue
			}
			cmp, ok := value.Compare(best)
			if !ok {
				return core.Value{}, storage.TypeMismatchError{
					Table:  src.columns[pos].table,
					Column: column.Name,
					Want:   "comparable values",
					Got:    column.Type.String(),
				}
			}
			if (agg.Func == sql.AggMin && cmp < 0) || (agg.Func == sql.AggMax && cmp > 0) {
				best = value
			}
		}
		return best, nil

	default:
		return core.Value{}, fmt.Errorf("unknown aggregate %s", agg.Name())
	}
}

// groupResolver evaluates expressions in grouped scope: plain columns
// must be part of the GROUP BY key, aggregates range over the group.
type groupResolver struct {
	src       *rowSource
	g         *group
	groupCols map[int]bool // source positions covered by GROUP BY
}

func newGroupResolver(src *rowSource, g *group, groupBy []sql.ColumnRef) (*groupResolver, error) {
	cols := make(map[int]bool, len(groupBy))
	for _, column := range groupBy {
		pos, err := src.columnPosition(column)
		if err != nil {
			return nil, err
		}
		cols[pos] = true
	}
	return &groupResolver{src: src, g: g, groupCols: cols}, nil
}

func (r *groupResolver) resolveColumn(ref sql.ColumnRef) (core.Value, error) {
	pos, err := r.src.columnPosition(ref)
	if err != nil {
		return core.Value{}, err
	}
	if !r.groupCols[pos] {
		return core.Value{}, AmbiguousAggregationError{Column: ref.String()}
	}
	return r.g.sample.values[pos], nil
}

func (r *groupResolver) resolveAggregate(agg sql.AggregateExpr) (core.Value, error) {
	return computeAggregate(agg, r.g.rows, r.src)
}

// rowResolver evaluates expressions in per-row scope, where aggregates
// have no meaning.
type rowResolver struct {
	src *rowSource
	row rowView
}

func (r rowResolver) resolveColumn(ref sql.ColumnRef) (core.Value, error) {
	pos, err := r.src.columnPosition(ref)
	if err != nil {
		return core.Value{}, err
	}
	return r.row.values[pos], nil
}

func (r rowResolver) resolveAggregate(agg sql.AggregateExpr) (core.Value, error) {
	return core.Value{}, fmt.Errorf("aggregate %s is not allowed here", agg.Name())
}
