// Package coraldb provides an embeddable SQL database engine with
// versioned, document-based storage.
//
// CoralDB keeps every database as a JSON document and records each
// successful mutation as a snapshot in a git object store, giving a
// built-in audit trail of who changed what and when.
//
// # Quick Start
//
// Create an in-memory database:
//
//	instance, _ := coraldb.OpenMemory()
//	engine := instance.Engine(core.Identity{Name: "App", Email: "app@example.com"})
//
//	engine.Execute("CREATE DATABASE mydb")
//	engine.Execute("CREATE TABLE mydb.users (id INT PRIMARY KEY, name STRING)")
//	engine.Execute("INSERT INTO mydb.users (id, name) VALUES (1, 'Alice')")
//
//	result, _ := engine.Execute("SELECT * FROM mydb.users")
//	result.Display()
//
// # Supported SQL
//
// CoralDB supports a subset of SQL including:
//   - CREATE/DROP DATABASE, USE
//   - CREATE/DROP TABLE with PRIMARY KEY, UNIQUE and REFERENCES
//   - INSERT, SELECT, UPDATE, DELETE
//   - WHERE with three-valued NULL logic, BETWEEN, IN, LIKE, IS NULL
//   - ORDER BY, LIMIT, OFFSET, DISTINCT
//   - Aggregate functions: SUM, AVG, MIN, MAX, COUNT
//   - GROUP BY, HAVING
//   - INNER JOIN
//   - SHOW DATABASES, SHOW TABLES, DESCRIBE
package coraldb
