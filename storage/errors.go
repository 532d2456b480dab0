package storage

import "fmt"

// DatabaseNotFoundError reports a reference to a database that does not
// exist in the catalog.
type DatabaseNotFoundError struct {
	Database string
}

func (e DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("database %q not found", e.Database)
}

// TableNotFoundError reports a reference to a table that does not exist
// in its database.
type TableNotFoundError struct {
	Database string
	Table    string
}

func (e TableNotFoundError) Error() string {
	if e.Database == "" {
		return fmt.Sprintf("table %q not found", e.Table)
	}
	return fmt.Sprintf("table %q not found in database %q", e.Table, e.Database)
}

// ColumnNotFoundError reports a reference to a column that does not
// exist in its table.
type ColumnNotFoundError struct {
	Table  string
	Column string
}

func (e ColumnNotFoundError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("column %q not found", e.Column)
	}
	return fmt.Sprintf("column %q not found in table %q", e.Column, e.Table)
}

// TypeMismatchError reports a value that does not conform to its
// column's declared type.
type TypeMismatchError struct {
	Table  string
	Column string
	Want   string
	Got    string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for column %q of table %q: expected %s, got %s", e.Column, e.Table, e.Want, e.Got)
}

// ConstraintKind identifies which constraint a mutation violated.
type ConstraintKind int

const (
	PrimaryKeyConstraint ConstraintKind = iota
	UniqueConstraint
	ReferenceConstraint
)

func (k ConstraintKind) String() string {
	switch k {
	case PrimaryKeyConstraint:
		return "PRIMARY KEY"
	case UniqueConstraint:
		return "UNIQUE"
	case ReferenceConstraint:
		return "REFERENCES"
	default:
		return "UNKNOWN"
	}
}

// ConstraintViolation reports a mutation rejected for violating a
// PRIMARY KEY or UNIQUE constraint, or a delete blocked by a
// referencing row.
type ConstraintViolation struct {
	Kind   ConstraintKind
	Table  string
	Column string
	Value  string
}

func (e ConstraintViolation) Error() string {
	switch {
	case e.Kind == ReferenceConstraint:
		return fmt.Sprintf("delete blocked: value %s is referenced by column %q of table %q", e.Value, e.Column, e.Table)
	case e.Value == "NULL":
		return fmt.Sprintf("%s constraint violated on column %q of table %q: NULL value", e.Kind, e.Column, e.Table)
	default:
		return fmt.Sprintf("%s constraint violated on column %q of table %q: duplicate value %s", e.Kind, e.Column, e.Table, e.Value)
	}
}
