package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/sql"
	"github.com/coraldb/coraldb/storage"
)

// Engine executes SQL statements against a Store. Each engine carries
// its own session state, so the database selected by USE never leaks
// between sessions.
type Engine struct {
	store    *storage.Store
	identity core.Identity
	session  string // current database, empty until USE
}

func NewEngine(store *storage.Store, identity core.Identity) *Engine {
	return &Engine{store: store, identity: identity}
}

// Store returns the engine's underlying store.
func (engine *Engine) Store() *storage.Store {
	return engine.store
}

// CurrentDatabase returns the database selected by USE, or "".
func (engine *Engine) CurrentDatabase() string {
	return engine.session
}

// Execute parses and runs one SQL statement. Mutating statements flush
// the store before returning, so a successful result is always durable.
func (engine *Engine) Execute(query string) (Result, error) {
	statement, err := sql.Parse(query)
	if err != nil {
		return nil, err
	}

	switch statement.Type() {
	case sql.SelectStatementType:
		return engine.executeSelectStatement(statement.(sql.SelectStatement))
	case sql.InsertStatementType:
		return engine.executeInsertStatement(statement.(sql.InsertStatement))
	case sql.UpdateStatementType:
		return engine.executeUpdateStatement(statement.(sql.UpdateStatement))
	case sql.DeleteStatementType:
		return engine.executeDeleteStatement(statement.(sql.DeleteStatement))
	case sql.CreateTableStatementType:
		return engine.executeCreateTableStatement(statement.(sql.CreateTableStatement))
	case sql.DropTableStatementType:
		return engine.executeDropTableStatement(statement.(sql.DropTableStatement))
	case sql.CreateDatabaseStatementType:
		return engine.executeCreateDatabaseStatement(statement.(sql.CreateDatabaseStatement))
	case sql.DropDatabaseStatementType:
		return engine.executeDropDatabaseStatement(statement.(sql.DropDatabaseStatement))
	case sql.UseStatementType:
		return engine.executeUseStatement(statement.(sql.UseStatement))
	case sql.ShowDatabasesStatementType:
		return engine.executeShowDatabasesStatement()
	case sql.ShowTablesStatementType:
		return engine.executeShowTablesStatement(statement.(sql.ShowTablesStatement))
	case sql.DescribeStatementType:
		return engine.executeDescribeStatement(statement.(sql.DescribeStatement))
	default:
		return nil, fmt.Errorf("unknown statement type %d", statement.Type())
	}
}

// resolveDatabase picks the database a statement operates on: an
// explicit db.table qualifier wins, otherwise the session's USE target.
func (engine *Engine) resolveDatabase(name string) (*storage.Database, error) {
	if name == "" {
		name = engine.session
	}
	if name == "" {
		return nil, storage.DatabaseNotFoundError{Database: "(no database selected)"}
	}
	return engine.store.Database(name)
}

func (engine *Engine) lookupTable(ref sql.TableRef) (*storage.Database, *storage.Table, error) {
	database, err := engine.resolveDatabase(ref.Database)
	if err != nil {
		return nil, nil, err
	}
	table, err := database.Table(ref.Table)
	if err != nil {
		return nil, nil, err
	}
	return database, table, nil
}

// targetRows evaluates a WHERE clause row by row and returns the ids
// of the matching rows. A nil clause matches everything.
func targetRows(table *storage.Table, where sql.Expr) ([]int64, error) {
	src, _ := sourceFromTable(table, "")
	var ids []int64
	for _, row := range table.Rows() {
		if where != nil {
			match, err := evalPredicate(where, rowResolver{src: src, row: rowView{values: row.Values}})
			if err != nil {
				return nil, err
			}
			if match != truthTrue {
				continue
			}
		}
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (engine *Engine) executeInsertStatement(statement sql.InsertStatement) (CommitResult, error) {
	start := time.Now()
	_, table, err := engine.lookupTable(statement.Table)
	if err != nil {
		return CommitResult{}, err
	}

	values := make([]core.Value, len(table.Columns))
	if len(statement.Columns) == 0 {
		if len(statement.Values) != len(table.Columns) {
			return CommitResult{}, fmt.Errorf("table %q expects %d values, got %d", table.Name, len(table.Columns), len(statement.Values))
		}
		for i, expr := range statement.Values {
			values[i] = expr.(sql.Literal).Value
		}
	} else {
		if len(statement.Columns) != len(statement.Values) {
			return CommitResult{}, fmt.Errorf("%d columns but %d values", len(statement.Columns), len(statement.Values))
		}
		// Unlisted columns are NULL.
		for i := range values {
			values[i] = core.Null()
		}
		for i, name := range statement.Columns {
			pos, err := table.ColumnPosition(name)
			if err != nil {
				return CommitResult{}, err
			}
			values[pos] = statement.Values[i].(sql.Literal).Value
		}
	}

	if _, err := table.Insert(values); err != nil {
		return CommitResult{}, err
	}
	if err := engine.flush("INSERT INTO " + table.Name); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{RecordsWritten: 1, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeUpdateStatement(statement sql.UpdateStatement) (CommitResult, error) {
	start := time.Now()
	_, table, err := engine.lookupTable(statement.Table)
	if err != nil {
		return CommitResult{}, err
	}

	sets := make(map[int]core.Value, len(statement.Sets))
	for _, clause := range statement.Sets {
		pos, err := table.ColumnPosition(clause.Column)
		if err != nil {
			return CommitResult{}, err
		}
		sets[pos] = clause.Value.(sql.Literal).Value
	}

	ids, err := targetRows(table, statement.Where)
	if err != nil {
		return CommitResult{}, err
	}
	updates := make([]storage.RowUpdate, len(ids))
	for i, id := range ids {
		updates[i] = storage.RowUpdate{RowID: id, Values: sets}
	}

	count, err := table.Update(updates)
	if err != nil {
		return CommitResult{}, err
	}
	if count > 0 {
		if err := engine.flush("UPDATE " + table.Name); err != nil {
			return CommitResult{}, err
		}
	}
	return CommitResult{RecordsWritten: count, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeDeleteStatement(statement sql.DeleteStatement) (CommitResult, error) {
	start := time.Now()
	database, table, err := engine.lookupTable(statement.Table)
	if err != nil {
		return CommitResult{}, err
	}

	ids, err := targetRows(table, statement.Where)
	if err != nil {
		return CommitResult{}, err
	}

	count, err := database.Delete(table, ids)
	if err != nil {
		return CommitResult{}, err
	}
	if count > 0 {
		if err := engine.flush("DELETE FROM " + table.Name); err != nil {
			return CommitResult{}, err
		}
	}
	return CommitResult{RecordsDeleted: count, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeCreateTableStatement(statement sql.CreateTableStatement) (CommitResult, error) {
	start := time.Now()
	database, err := engine.resolveDatabase(statement.Table.Database)
	if err != nil {
		return CommitResult{}, err
	}
	if _, err := database.CreateTable(statement.Table.Table, statement.Columns); err != nil {
		return CommitResult{}, err
	}
	if err := engine.flush("CREATE TABLE " + statement.Table.Table); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{TablesCreated: 1, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeDropTableStatement(statement sql.DropTableStatement) (CommitResult, error) {
	start := time.Now()
	database, err := engine.resolveDatabase(statement.Table.Database)
	if err != nil {
		return CommitResult{}, err
	}
	if err := database.DropTable(statement.Table.Table); err != nil {
		return CommitResult{}, err
	}
	if err := engine.flush("DROP TABLE " + statement.Table.Table); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{TablesDeleted: 1, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeCreateDatabaseStatement(statement sql.CreateDatabaseStatement) (CommitResult, error) {
	start := time.Now()
	if _, err := engine.store.CreateDatabase(statement.Database); err != nil {
		return CommitResult{}, err
	}
	if err := engine.flush("CREATE DATABASE " + statement.Database); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{DatabasesCreated: 1, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeDropDatabaseStatement(statement sql.DropDatabaseStatement) (CommitResult, error) {
	start := time.Now()
	if err := engine.store.DropDatabase(statement.Database); err != nil {
		return CommitResult{}, err
	}
	if engine.session == statement.Database {
		engine.session = ""
	}
	if err := engine.flush("DROP DATABASE " + statement.Database); err != nil {
		return CommitResult{}, err
	}
	return CommitResult{DatabasesDeleted: 1, ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeUseStatement(statement sql.UseStatement) (CommitResult, error) {
	start := time.Now()
	if _, err := engine.store.Database(statement.Database); err != nil {
		return CommitResult{}, err
	}
	engine.session = statement.Database
	return CommitResult{ExecutionTimeSec: time.Since(start).Seconds()}, nil
}

func (engine *Engine) executeShowDatabasesStatement() (QueryResult, error) {
	start := time.Now()
	result := QueryResult{Columns: []string{"Database"}}
	for _, database := range engine.store.Databases() {
		result.Rows = append(result.Rows, []core.Value{core.NewString(database.Name)})
	}
	result.RecordsRead = len(result.Rows)
	result.ExecutionTimeSec = time.Since(start).Seconds()
	return result, nil
}

func (engine *Engine) executeShowTablesStatement(statement sql.ShowTablesStatement) (QueryResult, error) {
	start := time.Now()
	database, err := engine.resolveDatabase(statement.Database)
	if err != nil {
		return QueryResult{}, err
	}
	result := QueryResult{Columns: []string{"Table"}}
	for _, table := range database.Tables() {
		result.Rows = append(result.Rows, []core.Value{core.NewString(table.Name)})
	}
	result.RecordsRead = len(result.Rows)
	result.ExecutionTimeSec = time.Since(start).Seconds()
	return result, nil
}

func (engine *Engine) executeDescribeStatement(statement sql.DescribeStatement) (QueryResult, error) {
	start := time.Now()
	_, table, err := engine.lookupTable(statement.Table)
	if err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{Columns: []string{"Column", "Type", "Constraints"}}
	for _, column := range table.Columns {
		var constraints []string
		if column.PrimaryKey {
			constraints = append(constraints, "PRIMARY KEY")
		}
		if column.Unique {
			constraints = append(constraints, "UNIQUE")
		}
		if column.References != nil {
			constraints = append(constraints, fmt.Sprintf("REFERENCES %s(%s)", column.References.Table, column.References.Column))
		}
		result.Rows = append(result.Rows, []core.Value{
			core.NewString(column.Name),
			core.NewString(column.Type.String()),
			core.NewString(strings.Join(constraints, ", ")),
		})
	}
	result.RecordsRead = len(result.Rows)
	result.ExecutionTimeSec = time.Since(start).Seconds()
	return result, nil
}

// flush persists the catalog after a successful mutation. The message
// labels the snapshot when a history is attached.
func (engine *Engine) flush(message string) error {
	return engine.store.Flush(message, engine.identity)
}
