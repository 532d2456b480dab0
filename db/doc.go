// Package db implements the CoralDB execution engine: it parses SQL
// statements, plans and evaluates queries against the storage engine,
// and persists every successful mutation.
//
// # Usage
//
//	store := storage.NewMemoryStore()
//	engine := db.NewEngine(store, core.Identity{Name: "amy"})
//
//	engine.Execute("CREATE DATABASE shop")
//	engine.Execute("USE shop")
//	engine.Execute("CREATE TABLE items (id INT PRIMARY KEY, name STRING)")
//	engine.Execute("INSERT INTO items VALUES (1, 'mug')")
//
//	result, err := engine.Execute("SELECT * FROM items WHERE id = 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Display()
//
// # Query pipeline
//
// SELECT statements flow through scan (narrowed by a hash index when
// the WHERE clause tests equality on an indexed column), join, filter,
// aggregation, HAVING, projection, DISTINCT, ORDER BY and finally
// OFFSET/LIMIT. Predicates use three-valued logic: comparisons against
// NULL are unknown, and unknown rows are filtered out.
package db
