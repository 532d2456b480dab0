package storage

import (
	"fmt"

	"github.com/coraldb/coraldb/core"
)

// Database is a named collection of tables. Table order is preserved
// for introspection output and persistence.
type Database struct {
	Name string

	tables []*Table
	byName map[string]*Table
}

func NewDatabase(name string) *Database {
	return &Database{
		Name:   name,
		byName: make(map[string]*Table),
	}
}

// CreateTable validates the column list, including REFERENCES targets,
// and adds the new table to the database.
func (d *Database) CreateTable(name string, columns []core.Column) (*Table, error) {
	if _, exists := d.byName[name]; exists {
		return nil, fmt.Errorf("table %q already exists in database %q", name, d.Name)
	}
	for _, column := range columns {
		ref := column.References
		if ref == nil {
			continue
		}
		if ref.Table == name {
			// Self-reference: the target column must be part of this
			// same definition.
			if !hasColumn(columns, ref.Column) {
				return nil, ColumnNotFoundError{Table: name, Column: ref.Column}
			}
			continue
		}
		target, err := d.Table(ref.Table)
		if err != nil {
			return nil, err
		}
		if _, err := target.Column(ref.Column); err != nil {
			return nil, err
		}
	}
	table, err := NewTable(name, columns)
	if err != nil {
		return nil, err
	}
	d.tables = append(d.tables, table)
	d.byName[name] = table
	return table, nil
}

func hasColumn(columns []core.Column, name string) bool {
	for _, column := range columns {
		if column.Name == name {
			return true
		}
	}
	return false
}

// DropTable removes a table. Dropping fails while another table still
// declares a REFERENCES constraint against it.
func (d *Database) DropTable(name string) error {
	if _, err := d.Table(name); err != nil {
		return err
	}
	for _, other := range d.tables {
		if other.Name == name {
			continue
		}
		for _, column := range other.Columns {
			if column.References != nil && column.References.Table == name {
				return fmt.Errorf("cannot drop table %q: referenced by column %q of table %q", name, column.Name, other.Name)
			}
		}
	}
	for i, table := range d.tables {
		if table.Name == name {
			d.tables = append(d.tables[:i], d.tables[i+1:]...)
			break
		}
	}
	delete(d.byName, name)
	return nil
}

// Table returns the named table.
func (d *Database) Table(name string) (*Table, error) {
	table, ok := d.byName[name]
	if !ok {
		return nil, TableNotFoundError{Database: d.Name, Table: name}
	}
	return table, nil
}

// Tables returns the database's tables in creation order.
func (d *Database) Tables() []*Table {
	return d.tables
}

// Delete removes rows from a table after checking referential
// integrity: a row whose referenced value is still held by a row of a
// referencing table blocks the whole delete.
func (d *Database) Delete(table *Table, rowIDs []int64) (int, error) {
	doomed := make(map[int64]bool, len(rowIDs))
	for _, id := range rowIDs {
		doomed[id] = true
	}

	for _, other := range d.tables {
		for _, column := range other.Columns {
			ref := column.References
			if ref == nil || ref.Table != table.Name {
				continue
			}
			refPos, err := table.ColumnPosition(ref.Column)
			if err != nil {
				return 0, err
			}
			// For a self-referencing table, rows being removed in the
			// same statement no longer count as referencing.
			var skip map[int64]bool
			if other == table {
				skip = doomed
			}
			idx, _ := other.Index(column.Name)
			for _, row := range table.Rows() {
				if !doomed[row.ID] {
					continue
				}
				value := row.Values[refPos]
				if value.IsNull() {
					continue
				}
				if d.referenced(other, idx, column, value, skip) {
					return 0, ConstraintViolation{
						Kind:   ReferenceConstraint,
						Table:  other.Name,
						Column: column.Name,
						Value:  value.String(),
					}
				}
			}
		}
	}
	return table.Delete(rowIDs), nil
}

// referenced reports whether any surviving row of the referencing table
// holds the value, using its index when present.
func (d *Database) referenced(other *Table, idx *Index, column core.Column, value core.Value, skip map[int64]bool) bool {
	if idx != nil {
		if len(skip) == 0 {
			return idx.Contains(value)
		}
		for _, id := range idx.Lookup(value) {
			if !skip[id] {
				return true
			}
		}
		return false
	}
	position, err := other.ColumnPosition(column.Name)
	if err != nil {
		return false
	}
	for _, row := range other.Rows() {
		if skip[row.ID] {
			continue
		}
		if row.Values[position].Equal(value) {
			return true
		}
	}
	return false
}
