package db

import (
	"errors"
	"testing"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/sql"
)

func setupSelectEngine(t *testing.T) *Engine {
	t.Helper()
	engine := setupTestEngine(t)
	mustExecute(t, engine, "USE testdb")
	mustExecute(t, engine, "INSERT INTO users VALUES (1, 'Alice', 30, TRUE)")
	mustExecute(t, engine, "INSERT INTO users VALUES (2, 'Bob', 17, FALSE)")
	mustExecute(t, engine, "INSERT INTO users VALUES (3, 'Charlie', 40, TRUE)")
	mustExecute(t, engine, "INSERT INTO users (id, name) VALUES (4, 'Dana')")
	return engine
}

func TestSelectCountWithFilter(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT COUNT(*) FROM users WHERE active = TRUE")
	if qr.Columns[0] != "COUNT(*)" {
		t.Errorf("Expected canonical column COUNT(*), got %q", qr.Columns[0])
	}
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewInt(2)) {
		t.Errorf("Expected COUNT(*) = 2, got %v", qr.Rows)
	}
}

func TestSelectNullNeverEqualsNull(t *testing.T) {
	engine := setupSelectEngine(t)

	// Dana's age is NULL; age = NULL is unknown, so no rows pass.
	qr := queryRows(t, engine, "SELECT id FROM users WHERE age = NULL")
	if len(qr.Rows) != 0 {
		t.Errorf("Expected no rows for = NULL, got %d", len(qr.Rows))
	}

	qr = queryRows(t, engine, "SELECT id FROM users WHERE age IS NULL")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewInt(4)) {
		t.Errorf("Expected only Dana for IS NULL, got %v", qr.Rows)
	}
}

func TestSelectNullComparisonsAreUnknown(t *testing.T) {
	engine := setupSelectEngine(t)

	// A NULL age fails both the test and its negation.
	less := queryRows(t, engine, "SELECT id FROM users WHERE age < 100")
	notLess := queryRows(t, engine, "SELECT id FROM users WHERE NOT age < 100")
	if len(less.Rows)+len(notLess.Rows) != 3 {
		t.Errorf("NULL row leaked through a comparison: %d + %d rows", len(less.Rows), len(notLess.Rows))
	}
}

func TestSelectNullSafeIn(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT id FROM users WHERE age IN (17, NULL)")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewInt(2)) {
		t.Errorf("Expected only Bob, got %v", qr.Rows)
	}
}

func TestSelectBetweenInclusive(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT id FROM users WHERE age BETWEEN 17 AND 30 ORDER BY id")
	if len(qr.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewInt(1)) || !qr.Rows[1][0].Equal(core.NewInt(2)) {
		t.Errorf("Unexpected BETWEEN result %v", qr.Rows)
	}
}

func TestSelectLike(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT name FROM users WHERE name LIKE 'A%'")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewString("Alice")) {
		t.Errorf("Expected Alice, got %v", qr.Rows)
	}

	qr = queryRows(t, engine, "SELECT name FROM users WHERE name LIKE '_ob'")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewString("Bob")) {
		t.Errorf("Expected Bob, got %v", qr.Rows)
	}

	// The pattern is anchored at both ends.
	qr = queryRows(t, engine, "SELECT name FROM users WHERE name LIKE 'li'")
	if len(qr.Rows) != 0 {
		t.Errorf("Unanchored match leaked through: %v", qr.Rows)
	}
}

func TestSelectAggregatesSkipNulls(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT COUNT(age), SUM(age), AVG(age), MIN(age), MAX(age) FROM users")
	row := qr.Rows[0]
	if !row[0].Equal(core.NewInt(3)) {
		t.Errorf("Expected COUNT(age) = 3, got %s", row[0])
	}
	if !row[1].Equal(core.NewInt(87)) {
		t.Errorf("Expected SUM(age) = 87, got %s", row[1])
	}
	if !row[2].Equal(core.NewFloat(29.0)) {
		t.Errorf("Expected AVG(age) = 29, got %s", row[2])
	}
	if !row[3].Equal(core.NewInt(17)) || !row[4].Equal(core.NewInt(40)) {
		t.Errorf("Expected MIN 17 MAX 40, got %s %s", row[3], row[4])
	}
}

func TestSelectAggregatesOverEmptyInput(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT COUNT(*), SUM(age) FROM users WHERE id > 100")
	if len(qr.Rows) != 1 {
		t.Fatalf("Aggregates over empty input must yield one row, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewInt(0)) {
		t.Errorf("Expected COUNT(*) = 0, got %s", qr.Rows[0][0])
	}
	if !qr.Rows[0][1].IsNull() {
		t.Errorf("Expected SUM over nothing to be NULL, got %s", qr.Rows[0][1])
	}
}

func TestSelectGroupByHaving(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT active, COUNT(*) AS n FROM users GROUP BY active HAVING COUNT(*) > 1")
	if len(qr.Rows) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewBool(true)) || !qr.Rows[0][1].Equal(core.NewInt(2)) {
		t.Errorf("Unexpected group row %v", qr.Rows[0])
	}
	if qr.Columns[1] != "n" {
		t.Errorf("Expected alias n, got %q", qr.Columns[1])
	}
}

func TestSelectGroupsPreserveFirstOccurrenceOrder(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT active, COUNT(*) FROM users GROUP BY active")
	if len(qr.Rows) != 3 {
		t.Fatalf("Expected 3 groups (true, false, null), got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewBool(true)) {
		t.Errorf("Expected first group TRUE, got %s", qr.Rows[0][0])
	}
	if !qr.Rows[2][0].IsNull() {
		t.Errorf("Expected last group NULL, got %s", qr.Rows[2][0])
	}
}

func TestSelectAmbiguousAggregation(t *testing.T) {
	engine := setupSelectEngine(t)

	_, err := engine.Execute("SELECT name, COUNT(*) FROM users")
	var ambiguous AmbiguousAggregationError
	if !errors.As(err, &ambiguous) {
		t.Errorf("Expected AmbiguousAggregationError, got %v", err)
	}

	_, err = engine.Execute("SELECT name, COUNT(*) FROM users GROUP BY active")
	if !errors.As(err, &ambiguous) {
		t.Errorf("Expected AmbiguousAggregationError for non-grouped column, got %v", err)
	}
}

func TestSelectAggregateWithJoinUnsupported(t *testing.T) {
	engine := setupSelectEngine(t)
	mustExecute(t, engine, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id))")

	_, err := engine.Execute("SELECT COUNT(*) FROM users INNER JOIN orders ON users.id = orders.user_id")
	var unsupported sql.UnsupportedFeatureError
	if !errors.As(err, &unsupported) {
		t.Errorf("Expected UnsupportedFeatureError, got %v", err)
	}
}

func TestSelectHavingRequiresGrouping(t *testing.T) {
	engine := setupSelectEngine(t)

	// HAVING re-filters groups; without GROUP BY or an aggregate there
	// are no groups to filter.
	_, err := engine.Execute("SELECT name FROM users HAVING name = 'Alice'")
	var unsupported sql.UnsupportedFeatureError
	if !errors.As(err, &unsupported) {
		t.Errorf("Expected UnsupportedFeatureError, got %v", err)
	}

	// An aggregate in HAVING makes the query grouped, so it stays valid.
	qr := queryRows(t, engine, "SELECT COUNT(*) FROM users HAVING COUNT(*) > 0")
	if len(qr.Rows) != 1 {
		t.Errorf("Expected 1 row from aggregate HAVING, got %d", len(qr.Rows))
	}
}

func TestSelectInnerJoin(t *testing.T) {
	engine := setupSelectEngine(t)
	mustExecute(t, engine, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT REFERENCES users(id), total FLOAT)")
	mustExecute(t, engine, "INSERT INTO orders VALUES (100, 1, 9.5)")
	mustExecute(t, engine, "INSERT INTO orders VALUES (101, 1, 3.0)")
	mustExecute(t, engine, "INSERT INTO orders VALUES (102, 3, 7.25)")

	qr := queryRows(t, engine, "SELECT u.name, o.total FROM users u INNER JOIN orders o ON u.id = o.user_id ORDER BY o.id")
	if len(qr.Rows) != 3 {
		t.Fatalf("Expected 3 joined rows, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewString("Alice")) || !qr.Rows[0][1].Equal(core.NewFloat(9.5)) {
		t.Errorf("Unexpected first joined row %v", qr.Rows[0])
	}
	// Bob has no orders and must not appear; there is no NULL padding.
	for _, row := range qr.Rows {
		if row[0].Equal(core.NewString("Bob")) {
			t.Error("INNER JOIN must not emit unmatched rows")
		}
	}
}

func TestSelectJoinStarUsesQualifiedNames(t *testing.T) {
	engine := setupSelectEngine(t)
	mustExecute(t, engine, "CREATE TABLE orders (id INT PRIMARY KEY, user_id INT)")
	mustExecute(t, engine, "INSERT INTO orders VALUES (100, 1)")

	qr := queryRows(t, engine, "SELECT * FROM users u INNER JOIN orders o ON u.id = o.user_id")
	if qr.Columns[0] != "u.id" || qr.Columns[4] != "o.id" {
		t.Errorf("Expected qualified columns for joined star, got %v", qr.Columns)
	}
}

func TestSelectDistinct(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT DISTINCT active FROM users")
	if len(qr.Rows) != 3 {
		t.Fatalf("Expected 3 distinct values (TRUE, FALSE, NULL), got %d", len(qr.Rows))
	}
	// First occurrence order: Alice's TRUE comes first.
	if !qr.Rows[0][0].Equal(core.NewBool(true)) {
		t.Errorf("Expected TRUE first, got %s", qr.Rows[0][0])
	}
}

func TestSelectOrderByNullsLast(t *testing.T) {
	engine := setupSelectEngine(t)

	asc := queryRows(t, engine, "SELECT id FROM users ORDER BY age ASC")
	if !asc.Rows[len(asc.Rows)-1][0].Equal(core.NewInt(4)) {
		t.Errorf("Expected NULL age last ascending, got %v", asc.Rows)
	}
	if !asc.Rows[0][0].Equal(core.NewInt(2)) {
		t.Errorf("Expected youngest first, got %v", asc.Rows)
	}

	desc := queryRows(t, engine, "SELECT id FROM users ORDER BY age DESC")
	if !desc.Rows[len(desc.Rows)-1][0].Equal(core.NewInt(4)) {
		t.Errorf("Expected NULL age last descending too, got %v", desc.Rows)
	}
	if !desc.Rows[0][0].Equal(core.NewInt(3)) {
		t.Errorf("Expected oldest first, got %v", desc.Rows)
	}
}

func TestSelectOrderByMultipleKeysIsStable(t *testing.T) {
	engine := setupSelectEngine(t)
	mustExecute(t, engine, "INSERT INTO users VALUES (5, 'Eve', 30, FALSE)")

	qr := queryRows(t, engine, "SELECT id FROM users ORDER BY age DESC, name ASC")
	// Alice and Eve share age 30; name breaks the tie.
	if !qr.Rows[1][0].Equal(core.NewInt(1)) || !qr.Rows[2][0].Equal(core.NewInt(5)) {
		t.Errorf("Unexpected tie-break order %v", qr.Rows)
	}
}

func TestSelectOrderByUnprojectedColumn(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT name FROM users WHERE age IS NOT NULL ORDER BY age")
	if !qr.Rows[0][0].Equal(core.NewString("Bob")) {
		t.Errorf("Expected Bob first, got %v", qr.Rows)
	}
}

func TestSelectLimitOffset(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT id FROM users ORDER BY id LIMIT 2 OFFSET 1")
	if len(qr.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(qr.Rows))
	}
	if !qr.Rows[0][0].Equal(core.NewInt(2)) || !qr.Rows[1][0].Equal(core.NewInt(3)) {
		t.Errorf("OFFSET must apply before LIMIT, got %v", qr.Rows)
	}

	if rows := queryRows(t, engine, "SELECT id FROM users LIMIT 0"); len(rows.Rows) != 0 {
		t.Errorf("LIMIT 0 must return no rows, got %d", len(rows.Rows))
	}

	if rows := queryRows(t, engine, "SELECT id FROM users OFFSET 100"); len(rows.Rows) != 0 {
		t.Errorf("OFFSET past the end must return no rows, got %d", len(rows.Rows))
	}
}

func TestSelectIndexFastPath(t *testing.T) {
	engine := setupSelectEngine(t)

	// Equality on the primary key narrows the scan to the index hits.
	qr := queryRows(t, engine, "SELECT name FROM users WHERE id = 3")
	if len(qr.Rows) != 1 || !qr.Rows[0][0].Equal(core.NewString("Charlie")) {
		t.Fatalf("Unexpected result %v", qr.Rows)
	}
	if qr.RecordsRead != 1 {
		t.Errorf("Expected index probe to read 1 record, got %d", qr.RecordsRead)
	}

	// The remaining conjuncts still apply to the candidates.
	qr = queryRows(t, engine, "SELECT name FROM users WHERE id = 3 AND age < 20")
	if len(qr.Rows) != 0 {
		t.Errorf("Residual filter ignored: %v", qr.Rows)
	}
}

func TestSelectAliasRenamesOutput(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT name AS who FROM users WHERE id = 1")
	if qr.Columns[0] != "who" {
		t.Errorf("Expected alias who, got %q", qr.Columns[0])
	}
}

func TestSelectBoolColumnAsFilter(t *testing.T) {
	engine := setupSelectEngine(t)

	qr := queryRows(t, engine, "SELECT id FROM users WHERE active ORDER BY id")
	if len(qr.Rows) != 2 {
		t.Errorf("Expected 2 active users, got %d", len(qr.Rows))
	}
}
