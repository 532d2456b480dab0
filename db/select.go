package db

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/sql"
	"github.com/coraldb/coraldb/storage"
)

// rowView is one row flowing through the select pipeline. For joined
// queries the values of both sides are concatenated.
type rowView struct {
	values []core.Value
}

// sourceColumn binds one pipeline position to its table and column.
type sourceColumn struct {
	table  string // table name
	alias  string // table alias, when given
	column core.Column
}

// rowSource is the bound input of a select: the column layout plus the
// rows it produced.
type rowSource struct {
	columns []sourceColumn
	joined  bool
}

func (src *rowSource) qualifies(col sourceColumn, qualifier string) bool {
	return qualifier == col.table || (col.alias != "" && qualifier == col.alias)
}

// columnPosition resolves a column reference to a pipeline position. An
// unqualified name that appears on both sides of a join is rejected.
func (src *rowSource) columnPosition(ref sql.ColumnRef) (int, error) {
	found := -1
	for i, col := range src.columns {
		if col.column.Name != ref.Name {
			continue
		}
		if ref.Table != "" && !src.qualifies(col, ref.Table) {
			continue
		}
		if found >= 0 {
			return 0, fmt.Errorf("column %q is ambiguous", ref.String())
		}
		found = i
	}
	if found < 0 {
		return 0, storage.ColumnNotFoundError{Column: ref.String()}
	}
	return found, nil
}

// outputName is the column heading for position pos: qualified for
// joined queries, plain otherwise.
func (src *rowSource) outputName(pos int) string {
	col := src.columns[pos]
	if src.joined {
		qualifier := col.table
		if col.alias != "" {
			qualifier = col.alias
		}
		return qualifier + "." + col.column.Name
	}
	return col.column.Name
}

func sourceFromTable(table *storage.Table, alias string) (*rowSource, []rowView) {
	src := &rowSource{}
	for _, column := range table.Columns {
		src.columns = append(src.columns, sourceColumn{table: table.Name, alias: alias, column: column})
	}
	rows := make([]rowView, 0, len(table.Rows()))
	for _, row := range table.Rows() {
		rows = append(rows, rowView{values: row.Values})
	}
	return src, rows
}

// outRow pairs a projected output row with the source row it came
// from, so ORDER BY can reference columns that were not projected.
type outRow struct {
	out []core.Value
	src rowView
}

func (engine *Engine) executeSelectStatement(statement sql.SelectStatement) (QueryResult, error) {
	start := time.Now()

	database, table, err := engine.lookupTable(statement.Table)
	if err != nil {
		return QueryResult{}, err
	}

	grouped := len(statement.GroupBy) > 0 || selectHasAggregates(statement)
	if statement.Join != nil && grouped {
		return QueryResult{}, sql.UnsupportedFeatureError{Feature: "aggregates with JOIN"}
	}
	if statement.Having != nil && !grouped {
		return QueryResult{}, sql.UnsupportedFeatureError{Feature: "HAVING without GROUP BY or aggregates"}
	}

	src, rows := sourceFromTable(table, statement.Table.Alias)
	scanned := len(rows)

	// Equality on an indexed column narrows the scan to the index hits.
	// The full WHERE clause still runs against the candidates.
	if statement.Join == nil {
		if candidates, ok := probeIndex(table, statement.Where); ok {
			rows = candidates
			scanned = len(rows)
		}
	}

	if statement.Join != nil {
		src, rows, err = engine.joinRows(database, src, rows, statement.Join)
		if err != nil {
			return QueryResult{}, err
		}
	}

	if statement.Where != nil {
		rows, err = filterRows(rows, statement.Where, src)
		if err != nil {
			return QueryResult{}, err
		}
	}

	var columns []string
	var output []outRow
	if grouped {
		columns, output, err = projectGroups(statement, rows, src)
	} else {
		columns, output, err = projectRows(statement, rows, src)
	}
	if err != nil {
		return QueryResult{}, err
	}

	if statement.Distinct {
		output = distinctRows(output)
	}

	if len(statement.OrderBy) > 0 {
		if err := orderRows(output, statement.OrderBy, columns, src, grouped); err != nil {
			return QueryResult{}, err
		}
	}

	output = sliceWindow(output, statement.Offset, statement.Limit)

	result := QueryResult{
		Columns:          columns,
		Rows:             make([][]core.Value, 0, len(output)),
		RecordsRead:      scanned,
		ExecutionTimeSec: time.Since(start).Seconds(),
	}
	for _, row := range output {
		result.Rows = append(result.Rows, row.out)
	}
	return result, nil
}

// probeIndex looks for an equality test on an indexed column in the
// WHERE clause (at the top level or along a top-level AND chain) and
// returns the matching rows when one is found.
func probeIndex(table *storage.Table, where sql.Expr) ([]rowView, bool) {
	column, value, ok := findIndexableEquality(table, where)
	if !ok {
		return nil, false
	}
	idx, ok := table.Index(column)
	if !ok {
		return nil, false
	}

	ids := make(map[int64]bool)
	for _, id := range idx.Lookup(value) {
		ids[id] = true
	}
	rows := make([]rowView, 0, len(ids))
	for _, row := range table.Rows() {
		if ids[row.ID] {
			rows = append(rows, rowView{values: row.Values})
		}
	}
	return rows, true
}

func findIndexableEquality(table *storage.Table, where sql.Expr) (string, core.Value, bool) {
	switch e := where.(type) {
	case sql.Comparison:
		if e.Op != sql.CompareEquals {
			return "", core.Value{}, false
		}
		ref, literal, ok := splitColumnLiteral(e.Left, e.Right)
		if !ok {
			return "", core.Value{}, false
		}
		if ref.Table != "" && ref.Table != table.Name {
			return "", core.Value{}, false
		}
		if _, indexed := table.Index(ref.Name); !indexed {
			return "", core.Value{}, false
		}
		return ref.Name, literal.Value, true
	case sql.LogicExpr:
		if e.Op != sql.LogicAnd {
			return "", core.Value{}, false
		}
		if column, value, ok := findIndexableEquality(table, e.Left); ok {
			return column, value, true
		}
		return findIndexableEquality(table, e.Right)
	default:
		return "", core.Value{}, false
	}
}

func splitColumnLiteral(left, right sql.Expr) (sql.ColumnRef, sql.Literal, bool) {
	if ref, ok := left.(sql.ColumnRef); ok {
		if literal, ok := right.(sql.Literal); ok {
			return ref, literal, true
		}
	}
	if ref, ok := right.(sql.ColumnRef); ok {
		if literal, ok := left.(sql.Literal); ok {
			return ref, literal, true
		}
	}
	return sql.ColumnRef{}, sql.Literal{}, false
}

// joinRows runs the single INNER JOIN as a nested loop. Only pairs
// whose ON condition evaluates to true survive; there is no padding
// for unmatched rows.
func (engine *Engine) joinRows(database *storage.Database, left *rowSource, leftRows []rowView, join *sql.JoinClause) (*rowSource, []rowView, error) {
	rightTable, err := database.Table(join.Table.Table)
	if err != nil {
		return nil, nil, err
	}
	right, rightRows := sourceFromTable(rightTable, join.Table.Alias)

	combined := &rowSource{joined: true}
	combined.columns = append(combined.columns, left.columns...)
	combined.columns = append(combined.columns, right.columns...)

	var rows []rowView
	for _, l := range leftRows {
		for _, r := range rightRows {
			merged := make([]core.Value, 0, len(l.values)+len(r.values))
			merged = append(merged, l.values...)
			merged = append(merged, r.values...)
			row := rowView{values: merged}

			match, err := evalPredicate(join.On, rowResolver{src: combined, row: row})
			if err != nil {
				return nil, nil, err
			}
			if match == truthTrue {
				rows = append(rows, row)
			}
		}
	}
	return combined, rows, nil
}

// filterRows keeps the rows whose predicate evaluates to true; unknown
// filters a row out just like false.
func filterRows(rows []rowView, where sql.Expr, src *rowSource) ([]rowView, error) {
	filtered := rows[:0:0]
	for _, row := range rows {
		keep, err := evalPredicate(where, rowResolver{src: src, row: row})
		if err != nil {
			return nil, err
		}
		if keep == truthTrue {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func selectHasAggregates(statement sql.SelectStatement) bool {
	for _, item := range statement.Items {
		if _, ok := item.Expr.(sql.AggregateExpr); ok {
			return true
		}
	}
	return statement.Having != nil && exprHasAggregates(statement.Having)
}

func exprHasAggregates(expr sql.Expr) bool {
	switch e := expr.(type) {
	case sql.AggregateExpr:
		return true
	case sql.Comparison:
		return exprHasAggregates(e.Left) || exprHasAggregates(e.Right)
	case sql.LogicExpr:
		return exprHasAggregates(e.Left) || exprHasAggregates(e.Right)
	case sql.NotExpr:
		return exprHasAggregates(e.Expr)
	case sql.IsNullExpr:
		return exprHasAggregates(e.Expr)
	case sql.BetweenExpr:
		return exprHasAggregates(e.Expr) || exprHasAggregates(e.Low) || exprHasAggregates(e.High)
	case sql.InExpr:
		return exprHasAggregates(e.Expr)
	case sql.LikeExpr:
		return exprHasAggregates(e.Expr)
	default:
		return false
	}
}

// projectRows projects each filtered row through the select list.
func projectRows(statement sql.SelectStatement, rows []rowView, src *rowSource) ([]string, []outRow, error) {
	var positions []int
	var columns []string

	if statement.Star {
		for i := range src.columns {
			positions = append(positions, i)
			columns = append(columns, src.outputName(i))
		}
	} else {
		for _, item := range statement.Items {
			ref, ok := item.Expr.(sql.ColumnRef)
			if !ok {
				return nil, nil, fmt.Errorf("unexpected projection %T", item.Expr)
			}
			pos, err := src.columnPosition(ref)
			if err != nil {
				return nil, nil, err
			}
			positions = append(positions, pos)
			if item.Alias != "" {
				columns = append(columns, item.Alias)
			} else {
				columns = append(columns, src.outputName(pos))
			}
		}
	}

	output := make([]outRow, 0, len(rows))
	for _, row := range rows {
		out := make([]core.Value, len(positions))
		for i, pos := range positions {
			out[i] = row.values[pos]
		}
		output = append(output, outRow{out: out, src: row})
	}
	return columns, output, nil
}

// projectGroups runs the aggregation path: bucket rows, apply HAVING,
// then project one output row per surviving group. Plain columns in
// the select list must be GROUP BY columns; anything else raises
// AmbiguousAggregationError.
func projectGroups(statement sql.SelectStatement, rows []rowView, src *rowSource) ([]string, []outRow, error) {
	if statement.Star {
		return nil, nil, AmbiguousAggregationError{Column: "*"}
	}

	groups, err := groupRows(rows, statement.GroupBy, src)
	if err != nil {
		return nil, nil, err
	}

	var columns []string
	for _, item := range statement.Items {
		switch {
		case item.Alias != "":
			columns = append(columns, item.Alias)
		default:
			switch e := item.Expr.(type) {
			case sql.AggregateExpr:
				columns = append(columns, e.Name())
			case sql.ColumnRef:
				columns = append(columns, e.Name)
			}
		}
	}

	var output []outRow
	for _, g := range groups {
		r, err := newGroupResolver(src, g, statement.GroupBy)
		if err != nil {
			return nil, nil, err
		}

		if statement.Having != nil {
			keep, err := evalPredicate(statement.Having, r)
			if err != nil {
				return nil, nil, err
			}
			if keep != truthTrue {
				continue
			}
		}

		out := make([]core.Value, len(statement.Items))
		for i, item := range statement.Items {
			value, err := evalValue(item.Expr, r)
			if err != nil {
				return nil, nil, err
			}
			out[i] = value
		}
		output = append(output, outRow{out: out, src: g.sample})
	}
	return columns, output, nil
}

// distinctRows keeps the first occurrence of each output row.
func distinctRows(output []outRow) []outRow {
	seen := make(map[string]bool, len(output))
	kept := output[:0:0]
	for _, row := range output {
		var sb strings.Builder
		for _, value := range row.out {
			sb.WriteString(value.Key())
			sb.WriteByte(0)
		}
		key := sb.String()
		if !seen[key] {
			seen[key] = true
			kept = append(kept, row)
		}
	}
	return kept
}

// orderRows sorts stably on each ORDER BY key in turn. Keys resolve
// against the output columns first, then against the source row for
// ungrouped queries. NULLs sort after every value regardless of
// direction.
func orderRows(output []outRow, orderBy []sql.OrderByClause, columns []string, src *rowSource, grouped bool) error {
	type sortKey struct {
		extract    func(outRow) core.Value
		descending bool
	}

	keys := make([]sortKey, len(orderBy))
	for i, clause := range orderBy {
		key := sortKey{descending: clause.Descending}

		outPos := -1
		if clause.Column.Table == "" {
			for j, name := range columns {
				if name == clause.Column.Name {
					outPos = j
					break
				}
			}
		}
		switch {
		case outPos >= 0:
			pos := outPos
			key.extract = func(row outRow) core.Value { return row.out[pos] }
		case !grouped:
			pos, err := src.columnPosition(clause.Column)
			if err != nil {
				return err
			}
			key.extract = func(row outRow) core.Value { return row.src.values[pos] }
		default:
			return storage.ColumnNotFoundError{Column: clause.Column.String()}
		}
		keys[i] = key
	}

	sort.SliceStable(output, func(i, j int) bool {
		for _, key := range keys {
			a := key.extract(output[i])
			b := key.extract(output[j])
			if a.IsNull() && b.IsNull() {
				continue
			}
			if a.IsNull() {
				return false
			}
			if b.IsNull() {
				return true
			}
			cmp, ok := a.Compare(b)
			if !ok || cmp == 0 {
				continue
			}
			if key.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return nil
}

// sliceWindow applies OFFSET then LIMIT. A negative value means the
// clause was absent; LIMIT 0 yields no rows.
func sliceWindow(output []outRow, offset, limit int) []outRow {
	if offset > 0 {
		if offset >= len(output) {
			return nil
		}
		output = output[offset:]
	}
	if limit >= 0 && limit < len(output) {
		output = output[:limit]
	}
	return output
}
