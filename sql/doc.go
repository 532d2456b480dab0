// Package sql provides SQL lexing and parsing for CoralDB.
//
// The package includes a lexer that tokenizes SQL strings and a parser
// that produces abstract syntax trees for SQL statements.
//
// # Lexer Usage
//
//	lexer := sql.NewLexer("SELECT * FROM users")
//	for {
//	    token := lexer.NextToken()
//	    if token.Type == sql.EOF {
//	        break
//	    }
//	    fmt.Println(token)
//	}
//
// # Parser Usage
//
//	statement, err := sql.Parse("SELECT * FROM mydb.users WHERE id = 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Supported Statements
//
// The parser supports the following statement types:
//   - SelectStatement, with joins, aggregates, GROUP BY, HAVING,
//     DISTINCT, ORDER BY, LIMIT and OFFSET
//   - InsertStatement
//   - UpdateStatement
//   - DeleteStatement
//   - CreateTableStatement, DropTableStatement
//   - CreateDatabaseStatement, DropDatabaseStatement
//   - UseStatement
//   - ShowDatabasesStatement, ShowTablesStatement
//   - DescribeStatement
//
// WHERE, HAVING and join conditions are full boolean expression trees
// with NOT binding tighter than AND, and AND tighter than OR.
package sql
