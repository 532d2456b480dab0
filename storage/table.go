package storage

import (
	"fmt"

	"github.com/coraldb/coraldb/core"
)

// Row is one record of a table. Values are positional and conform 1:1
// to the table's column list.
type Row struct {
	ID     int64
	Values []core.Value
}

// Table owns an ordered collection of rows plus one hash index per
// PRIMARY KEY, UNIQUE or REFERENCES column. All mutations go through
// Insert, Update and Delete, which keep the indexes in step with the
// rows; a mutation that fails a constraint leaves both untouched.
type Table struct {
	Name    string
	Columns []core.Column

	rows      []Row
	indexes   map[string]*Index
	positions map[string]int
	nextRowID int64
}

// NewTable validates the column list and builds an empty table with its
// automatic indexes. Exactly one PRIMARY KEY column is required.
func NewTable(name string, columns []core.Column) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q must have at least one column", name)
	}

	table := &Table{
		Name:      name,
		Columns:   columns,
		indexes:   make(map[string]*Index),
		positions: make(map[string]int, len(columns)),
		nextRowID: 1,
	}

	primaryKeys := 0
	for i, column := range columns {
		if _, duplicate := table.positions[column.Name]; duplicate {
			return nil, fmt.Errorf("table %q declares column %q twice", name, column.Name)
		}
		table.positions[column.Name] = i
		if column.PrimaryKey {
			primaryKeys++
		}
		if column.Indexed() {
			table.indexes[column.Name] = NewIndex(column.Name, column.PrimaryKey || column.Unique)
		}
	}
	if primaryKeys != 1 {
		return nil, fmt.Errorf("table %q must have exactly one PRIMARY KEY column, has %d", name, primaryKeys)
	}
	return table, nil
}

// ColumnPosition returns the position of a column in the row layout.
func (t *Table) ColumnPosition(name string) (int, error) {
	pos, ok := t.positions[name]
	if !ok {
		return 0, ColumnNotFoundError{Table: t.Name, Column: name}
	}
	return pos, nil
}

// Column returns the definition of the named column.
func (t *Table) Column(name string) (core.Column, error) {
	pos, err := t.ColumnPosition(name)
	if err != nil {
		return core.Column{}, err
	}
	return t.Columns[pos], nil
}

// Rows returns the table's rows in insertion order. Callers must not
// mutate the returned slice.
func (t *Table) Rows() []Row {
	return t.rows
}

// Index returns the automatic index on the named column, if one exists.
func (t *Table) Index(column string) (*Index, bool) {
	idx, ok := t.indexes[column]
	return idx, ok
}

// conform checks one positional value against its column, returning the
// stored form.
func (t *Table) conform(position int, value core.Value) (core.Value, error) {
	column := t.Columns[position]
	stored, ok := core.Conform(value, column.Type)
	if !ok {
		return core.Value{}, TypeMismatchError{
			Table:  t.Name,
			Column: column.Name,
			Want:   column.Type.String(),
			Got:    value.KindName(),
		}
	}
	return stored, nil
}

// checkUnique rejects a NULL PRIMARY KEY value and a non-NULL value
// already present in a PRIMARY KEY or UNIQUE index. excludeRow skips
// one row id, for updates that keep a row's own value.
func (t *Table) checkUnique(column core.Column, value core.Value, excludeRow int64) error {
	if value.IsNull() {
		if column.PrimaryKey {
			return ConstraintViolation{Kind: PrimaryKeyConstraint, Table: t.Name, Column: column.Name, Value: "NULL"}
		}
		return nil
	}
	idx := t.indexes[column.Name]
	if idx == nil || !idx.Unique {
		return nil
	}
	for _, id := range idx.Lookup(value) {
		if id != excludeRow {
			kind := UniqueConstraint
			if column.PrimaryKey {
				kind = PrimaryKeyConstraint
			}
			return ConstraintViolation{Kind: kind, Table: t.Name, Column: column.Name, Value: value.String()}
		}
	}
	return nil
}

// Insert appends a new row after validating arity, types and
// uniqueness constraints. On success every automatic index covers the
// new row.
func (t *Table) Insert(values []core.Value) (Row, error) {
	if len(values) != len(t.Columns) {
		return Row{}, fmt.Errorf("table %q expects %d values, got %d", t.Name, len(t.Columns), len(values))
	}

	stored := make([]core.Value, len(values))
	for i, value := range values {
		conformed, err := t.conform(i, value)
		if err != nil {
			return Row{}, err
		}
		stored[i] = conformed
	}
	for i, column := range t.Columns {
		if err := t.checkUnique(column, stored[i], 0); err != nil {
			return Row{}, err
		}
	}

	row := Row{ID: t.nextRowID, Values: stored}
	t.nextRowID++
	t.rows = append(t.rows, row)
	for name, idx := range t.indexes {
		idx.Insert(stored[t.positions[name]], row.ID)
	}
	return row, nil
}

// RowUpdate carries the new values for one row of an Update call.
type RowUpdate struct {
	RowID  int64
	Values map[int]core.Value // column position to new value
}

// Update applies a set of per-row changes atomically: every change is
// validated against types and constraints before any row or index is
// touched, so a failure part way through a multi-row UPDATE leaves the
// table exactly as it was. Validation spans the whole batch, not each
// row in isolation, so one bad row aborts the entire UPDATE instead of
// applying the clean rows around it.
func (t *Table) Update(updates []RowUpdate) (int, error) {
	type planned struct {
		rowPos int
		values []core.Value
	}

	rowPositions := make(map[int64]int, len(t.rows))
	for i, row := range t.rows {
		rowPositions[row.ID] = i
	}

	// Uniqueness across the whole batch: updated rows may both vacate
	// and claim values, so track claims per column.
	claims := make(map[string]map[string]int64)
	plans := make([]planned, 0, len(updates))

	for _, update := range updates {
		rowPos, ok := rowPositions[update.RowID]
		if !ok {
			return 0, fmt.Errorf("row %d not found in table %q", update.RowID, t.Name)
		}
		next := make([]core.Value, len(t.Columns))
		copy(next, t.rows[rowPos].Values)
		for position, value := range update.Values {
			conformed, err := t.conform(position, value)
			if err != nil {
				return 0, err
			}
			next[position] = conformed
		}
		for i, column := range t.Columns {
			if err := t.checkUnique(column, next[i], update.RowID); err != nil {
				return 0, err
			}
			idx := t.indexes[column.Name]
			if idx == nil || !idx.Unique || next[i].IsNull() {
				continue
			}
			key := next[i].Key()
			if claims[column.Name] == nil {
				claims[column.Name] = make(map[string]int64)
			}
			if claimedBy, taken := claims[column.Name][key]; taken && claimedBy != update.RowID {
				kind := UniqueConstraint
				if column.PrimaryKey {
					kind = PrimaryKeyConstraint
				}
				return 0, ConstraintViolation{Kind: kind, Table: t.Name, Column: column.Name, Value: next[i].String()}
			}
			claims[column.Name][key] = update.RowID
		}
		plans = append(plans, planned{rowPos: rowPos, values: next})
	}

	for _, plan := range plans {
		row := &t.rows[plan.rowPos]
		for name, idx := range t.indexes {
			position := t.positions[name]
			idx.Delete(row.Values[position], row.ID)
			idx.Insert(plan.values[position], row.ID)
		}
		row.Values = plan.values
	}
	return len(plans), nil
}

// Delete removes the rows with the given ids, unindexing their values.
// Referential checks happen one level up, in Database.Delete.
func (t *Table) Delete(rowIDs []int64) int {
	doomed := make(map[int64]bool, len(rowIDs))
	for _, id := range rowIDs {
		doomed[id] = true
	}

	kept := t.rows[:0]
	removed := 0
	for _, row := range t.rows {
		if !doomed[row.ID] {
			kept = append(kept, row)
			continue
		}
		for name, idx := range t.indexes {
			idx.Delete(row.Values[t.positions[name]], row.ID)
		}
		removed++
	}
	t.rows = kept
	return removed
}

// RebuildIndexes drops and repopulates every automatic index from the
// current rows. Used after loading a persisted table, where only rows
// are stored.
func (t *Table) RebuildIndexes() {
	for name, idx := range t.indexes {
		idx.clear()
		position := t.positions[name]
		for _, row := range t.rows {
			idx.Insert(row.Values[position], row.ID)
		}
	}
}

// primaryKeyColumn returns the table's PRIMARY KEY column.
func (t *Table) primaryKeyColumn() core.Column {
	for _, column := range t.Columns {
		if column.PrimaryKey {
			return column
		}
	}
	return core.Column{}
}
