package db

import (
	"errors"
	"testing"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/storage"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()
	store := storage.NewMemoryStore()
	engine := NewEngine(store, core.Identity{Name: "test", Email: "test@test.com"})

	mustExecute(t, engine, "CREATE DATABASE testdb")
	mustExecute(t, engine, "CREATE TABLE testdb.users (id INT PRIMARY KEY, name STRING, age INT, active BOOL)")
	return engine
}

func mustExecute(t *testing.T, engine *Engine, query string) Result {
	t.Helper()
	result, err := engine.Execute(query)
	if err != nil {
		t.Fatalf("Failed to execute %q: %v", query, err)
	}
	return result
}

func insertTestData(t *testing.T, engine *Engine) {
	t.Helper()
	mustExecute(t, engine, "INSERT INTO testdb.users VALUES (1, 'Alice', 30, TRUE)")
	mustExecute(t, engine, "INSERT INTO testdb.users VALUES (2, 'Bob', 25, FALSE)")
	mustExecute(t, engine, "INSERT INTO testdb.users VALUES (3, 'Charlie', 35, TRUE)")
}

func queryRows(t *testing.T, engine *Engine, query string) QueryResult {
	t.Helper()
	result := mustExecute(t, engine, query)
	qr, ok := result.(QueryResult)
	if !ok {
		t.Fatalf("Expected QueryResult for %q, got %T", query, result)
	}
	return qr
}

func TestEngineInsertAndSelect(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	qr := queryRows(t, engine, "SELECT * FROM testdb.users")
	if len(qr.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(qr.Rows))
	}
	if len(qr.Columns) != 4 || qr.Columns[0] != "id" {
		t.Errorf("Unexpected columns %v", qr.Columns)
	}
}

func TestEngineUseSetsSession(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	if _, err := engine.Execute("SELECT * FROM users"); err == nil {
		t.Error("Expected error selecting without a database selected")
	}

	mustExecute(t, engine, "USE testdb")
	qr := queryRows(t, engine, "SELECT * FROM users")
	if len(qr.Rows) != 3 {
		t.Errorf("Expected 3 rows after USE, got %d", len(qr.Rows))
	}
}

func TestEngineSessionIsPerEngine(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "USE testdb")

	other := NewEngine(engine.Store(), core.Identity{Name: "other"})
	if other.CurrentDatabase() != "" {
		t.Error("New engine must start without a selected database")
	}
	if engine.CurrentDatabase() != "testdb" {
		t.Error("USE must stick to its own engine")
	}
}

func TestEngineUseUnknownDatabase(t *testing.T) {
	engine := setupTestEngine(t)

	_, err := engine.Execute("USE nope")
	var notFound storage.DatabaseNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected DatabaseNotFoundError, got %v", err)
	}
}

func TestEngineInsertWithColumnList(t *testing.T) {
	engine := setupTestEngine(t)

	mustExecute(t, engine, "INSERT INTO testdb.users (id, name) VALUES (7, 'Dana')")
	qr := queryRows(t, engine, "SELECT age FROM testdb.users WHERE id = 7")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].IsNull() {
		t.Error("Unlisted column must default to NULL")
	}
}

func TestEngineInsertDuplicateKey(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	_, err := engine.Execute("INSERT INTO testdb.users VALUES (1, 'Dup', 1, TRUE)")
	var violation storage.ConstraintViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected ConstraintViolation, got %v", err)
	}

	qr := queryRows(t, engine, "SELECT COUNT(*) FROM testdb.users")
	if !qr.Rows[0][0].Equal(core.NewInt(3)) {
		t.Error("Failed insert must not change the table")
	}
}

func TestEngineUpdate(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	result := mustExecute(t, engine, "UPDATE testdb.users SET age = 26 WHERE name = 'Bob'")
	cr := result.(CommitResult)
	if cr.RecordsWritten != 1 {
		t.Errorf("Expected 1 record written, got %d", cr.RecordsWritten)
	}

	qr := queryRows(t, engine, "SELECT age FROM testdb.users WHERE name = 'Bob'")
	if !qr.Rows[0][0].Equal(core.NewInt(26)) {
		t.Errorf("Expected age 26, got %s", qr.Rows[0][0])
	}
}

func TestEngineUpdateTypeMismatchLeavesRowsUntouched(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	_, err := engine.Execute("UPDATE testdb.users SET age = 'old'")
	var mismatch storage.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Expected TypeMismatchError, got %v", err)
	}

	qr := queryRows(t, engine, "SELECT age FROM testdb.users WHERE id = 1")
	if !qr.Rows[0][0].Equal(core.NewInt(30)) {
		t.Error("Failed update must leave rows untouched")
	}
}

func TestEngineDelete(t *testing.T) {
	engine := setupTestEngine(t)
	insertTestData(t, engine)

	result := mustExecute(t, engine, "DELETE FROM testdb.users WHERE active = FALSE")
	cr := result.(CommitResult)
	if cr.RecordsDeleted != 1 {
		t.Errorf("Expected 1 record deleted, got %d", cr.RecordsDeleted)
	}

	qr := queryRows(t, engine, "SELECT COUNT(*) FROM testdb.users")
	if !qr.Rows[0][0].Equal(core.NewInt(2)) {
		t.Error("Expected 2 rows to remain")
	}
}

func TestEngineDeleteBlockedByForeignKey(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "USE testdb")
	mustExecute(t, engine, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id))")
	insertTestData(t, engine)
	mustExecute(t, engine, "INSERT INTO orders VALUES (100, 1)")

	_, err := engine.Execute("DELETE FROM users WHERE id = 1")
	var violation storage.ConstraintViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected ConstraintViolation, got %v", err)
	}
	if violation.Kind != storage.ReferenceConstraint {
		t.Errorf("Expected ReferenceConstraint, got %v", violation.Kind)
	}

	mustExecute(t, engine, "DELETE FROM orders WHERE user_id = 1")
	mustExecute(t, engine, "DELETE FROM users WHERE id = 1")
}

func TestEngineCreateTableRequiresPrimaryKey(t *testing.T) {
	engine := setupTestEngine(t)
	if _, err := engine.Execute("CREATE TABLE testdb.bad (a INT, b INT)"); err == nil {
		t.Error("Expected error creating table without primary key")
	}
}

func TestEngineShowAndDescribe(t *testing.T) {
	engine := setupTestEngine(t)

	qr := queryRows(t, engine, "SHOW DATABASES")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewString("testdb")) {
		t.Errorf("Unexpected SHOW DATABASES output %v", qr.Rows)
	}

	qr = queryRows(t, engine, "SHOW TABLES FROM testdb")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewString("users")) {
		t.Errorf("Unexpected SHOW TABLES output %v", qr.Rows)
	}

	qr = queryRows(t, engine, "DESCRIBE testdb.users")
	if len(qr.Rows) != 4 {
		t.Fatalf("Expected 4 column descriptions, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][2].Equal(core.NewString("PRIMARY KEY")) {
		t.Errorf("Expected PRIMARY KEY constraint on id, got %s", qr.Rows[0][2])
	}
}

func TestEngineDropDatabaseClearsSession(t *testing.T) {
	engine := setupTestEngine(t)
	mustExecute(t, engine, "USE testdb")
	mustExecute(t, engine, "DROP DATABASE testdb")

	if engine.CurrentDatabase() != "" {
		t.Error("Dropping the selected database must clear the session")
	}
}

func TestEngineUnknownTableAndColumn(t *testing.T) {
	engine := setupTestEngine(t)

	_, err := engine.Execute("SELECT * FROM testdb.nope")
	var tableNotFound storage.TableNotFoundError
	if !errors.As(err, &tableNotFound) {
		t.Errorf("Expected TableNotFoundError, got %v", err)
	}

	_, err = engine.Execute("SELECT nope FROM testdb.users")
	var columnNotFound storage.ColumnNotFoundError
	if !errors.As(err, &columnNotFound) {
		t.Errorf("Expected ColumnNotFoundError, got %v", err)
	}
}
