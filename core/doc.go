// Package core provides core types used throughout coraldb.
//
// The package defines the typed value model and schema types shared by
// the SQL layer and the storage engine.
//
// # Values
//
// Value is a tagged scalar: INT, FLOAT, STRING, BOOL, or NULL. The zero
// Value is NULL. INT and FLOAT cross-coerce in comparisons; STRING and
// BOOL compare by identity.
//
//	v := core.NewInt(42)
//	v.Equal(core.NewFloat(42)) // true
//
// # Columns
//
// Column declares a name, a type, and optional PRIMARY KEY, UNIQUE, or
// REFERENCES flags. Flagged columns carry an automatic hash index:
//
//	cols := []core.Column{
//	    {Name: "id", Type: core.IntType, PrimaryKey: true},
//	    {Name: "email", Type: core.StringType, Unique: true},
//	    {Name: "dept_id", Type: core.IntType, References: &core.Reference{Table: "depts", Column: "id"}},
//	}
package core
