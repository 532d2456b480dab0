package sql

import (
	"strconv"

	"github.com/coraldb/coraldb/core"
)

// Parser is a recursive-descent parser over the token stream produced
// by Lexer. It keeps a two-token window: cur is the token being
// examined and peek is the one after it.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

func NewParser(sql string) *Parser {
	parser := &Parser{lexer: NewLexer(sql)}
	parser.advance()
	parser.advance()
	return parser
}

// Parse consumes one complete statement, including an optional trailing
// semicolon, and requires the input to end after it.
func (parser *Parser) Parse() (Statement, error) {
	statement, err := parser.parseStatement()
	if err != nil {
		return nil, err
	}
	if parser.cur.Type == Semicolon {
		parser.advance()
	}
	if parser.cur.Type != EOF {
		return nil, parser.syntaxError("end of statement")
	}
	return statement, nil
}

// Parse is a convenience wrapper around NewParser(sql).Parse().
func Parse(sql string) (Statement, error) {
	return NewParser(sql).Parse()
}

func (parser *Parser) advance() {
	parser.cur = parser.peek
	parser.peek = parser.lexer.NextToken()
}

func (parser *Parser) expect(tokenType TokenType) (Token, error) {
	if parser.cur.Type != tokenType {
		return Token{}, parser.syntaxError(tokenNames[tokenType])
	}
	token := parser.cur
	parser.advance()
	return token, nil
}

func (parser *Parser) syntaxError(expected string) error {
	return SyntaxError{Pos: parser.cur.Pos, Got: parser.cur.String(), Expected: expected}
}

func (parser *Parser) parseStatement() (Statement, error) {
	switch parser.cur.Type {
	case Select:
		return parser.parseSelect()
	case Insert:
		return parser.parseInsert()
	case Update:
		return parser.parseUpdate()
	case Delete:
		return parser.parseDelete()
	case Create:
		return parser.parseCreate()
	case Drop:
		return parser.parseDrop()
	case Use:
		return parser.parseUse()
	case Show:
		return parser.parseShow()
	case Describe:
		return parser.parseDescribe()
	default:
		return nil, parser.syntaxError("statement keyword")
	}
}

// parseTableRef parses [database.]table with an optional alias
// introduced by AS or a bare identifier.
func (parser *Parser) parseTableRef(allowAlias bool) (TableRef, error) {
	name, err := parser.expect(Identifier)
	if err != nil {
		return TableRef{}, err
	}
	ref := TableRef{Table: name.Value}
	if parser.cur.Type == Dot {
		parser.advance()
		table, err := parser.expect(Identifier)
		if err != nil {
			return TableRef{}, err
		}
		ref.Database = ref.Table
		ref.Table = table.Value
	}
	if !allowAlias {
		return ref, nil
	}
	if parser.cur.Type == As {
		parser.advance()
		alias, err := parser.expect(Identifier)
		if err != nil {
			return TableRef{}, err
		}
		ref.Alias = alias.Value
	} else if parser.cur.Type == Identifier {
		ref.Alias = parser.cur.Value
		parser.advance()
	}
	return ref, nil
}

func (parser *Parser) parseColumnRef() (ColumnRef, error) {
	name, err := parser.expect(Identifier)
	if err != nil {
		return ColumnRef{}, err
	}
	ref := ColumnRef{Name: name.Value}
	if parser.cur.Type == Dot {
		parser.advance()
		column, err := parser.expect(Identifier)
		if err != nil {
			return ColumnRef{}, err
		}
		ref.Table = ref.Name
		ref.Name = column.Value
	}
	return ref, nil
}

func (parser *Parser) parseSelect() (Statement, error) {
	statement := SelectStatement{Limit: -1, Offset: -1}
	parser.advance() // consume SELECT

	if parser.cur.Type == Distinct {
		statement.Distinct = true
		parser.advance()
	}

	if parser.cur.Type == Wildcard {
		statement.Star = true
		parser.advance()
	} else {
		for {
			item, err := parser.parseSelectItem()
			if err != nil {
				return nil, err
			}
			statement.Items = append(statement.Items, item)
			if parser.cur.Type != Comma {
				break
			}
			parser.advance()
		}
	}

	if _, err := parser.expect(From); err != nil {
		return nil, err
	}
	table, err := parser.parseTableRef(true)
	if err != nil {
		return nil, err
	}
	statement.Table = table

	if parser.cur.Type == Inner || parser.cur.Type == Join {
		join, err := parser.parseJoin()
		if err != nil {
			return nil, err
		}
		statement.Join = join
	}

	if parser.cur.Type == Where {
		parser.advance()
		where, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		statement.Where = where
	}

	if parser.cur.Type == Group {
		parser.advance()
		if _, err := parser.expect(By); err != nil {
			return nil, err
		}
		for {
			column, err := parser.parseColumnRef()
			if err != nil {
				return nil, err
			}
			statement.GroupBy = append(statement.GroupBy, column)
			if parser.cur.Type != Comma {
				break
			}
			parser.advance()
		}
	}

	if parser.cur.Type == Having {
		parser.advance()
		having, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		statement.Having = having
	}

	if parser.cur.Type == Order {
		parser.advance()
		if _, err := parser.expect(By); err != nil {
			return nil, err
		}
		for {
			column, err := parser.parseColumnRef()
			if err != nil {
				return nil, err
			}
			clause := OrderByClause{Column: column}
			if parser.cur.Type == Asc {
				parser.advance()
			} else if parser.cur.Type == Desc {
				clause.Descending = true
				parser.advance()
			}
			statement.OrderBy = append(statement.OrderBy, clause)
			if parser.cur.Type != Comma {
				break
			}
			parser.advance()
		}
	}

	// LIMIT and OFFSET are accepted in either order.
	for parser.cur.Type == Limit || parser.cur.Type == Offset {
		clause := parser.cur.Type
		parser.advance()
		n, err := parser.parseNonNegativeInt()
		if err != nil {
			return nil, err
		}
		if clause == Limit {
			statement.Limit = n
		} else {
			statement.Offset = n
		}
	}

	return statement, nil
}

func (parser *Parser) parseSelectItem() (SelectItem, error) {
	var item SelectItem
	switch parser.cur.Type {
	case Count, Sum, Avg, Min, Max:
		aggregate, err := parser.parseAggregate()
		if err != nil {
			return SelectItem{}, err
		}
		item.Expr = aggregate
	case Identifier:
		column, err := parser.parseColumnRef()
		if err != nil {
			return SelectItem{}, err
		}
		item.Expr = column
	default:
		return SelectItem{}, parser.syntaxError("column or aggregate")
	}
	if parser.cur.Type == As {
		parser.advance()
		alias, err := parser.expect(Identifier)
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias.Value
	}
	return item, nil
}

func (parser *Parser) parseAggregate() (AggregateExpr, error) {
	var function AggregateFunc
	switch parser.cur.Type {
	case Count:
		function = AggCount
	case Sum:
		function = AggSum
	case Avg:
		function = AggAvg
	case Min:
		function = AggMin
	case Max:
		function = AggMax
	}
	parser.advance()

	if _, err := parser.expect(ParenOpen); err != nil {
		return AggregateExpr{}, err
	}

	if parser.cur.Type == Distinct {
		return AggregateExpr{}, UnsupportedFeatureError{Feature: "COUNT DISTINCT"}
	}

	if parser.cur.Type == Wildcard {
		if function != AggCount {
			return AggregateExpr{}, parser.syntaxError("column name")
		}
		parser.advance()
		if _, err := parser.expect(ParenClose); err != nil {
			return AggregateExpr{}, err
		}
		return AggregateExpr{Func: AggCount, Star: true}, nil
	}

	column, err := parser.parseColumnRef()
	if err != nil {
		return AggregateExpr{}, err
	}
	if parser.cur.Type != ParenClose {
		return AggregateExpr{}, UnsupportedFeatureError{Feature: "expression as aggregate argument"}
	}
	parser.advance()
	return AggregateExpr{Func: function, Column: column}, nil
}

func (parser *Parser) parseJoin() (*JoinClause, error) {
	if parser.cur.Type == Inner {
		parser.advance()
	}
	if _, err := parser.expect(Join); err != nil {
		return nil, err
	}
	table, err := parser.parseTableRef(true)
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(On); err != nil {
		return nil, err
	}
	condition, err := parser.parseExpr()
	if err != nil {
		return nil, err
	}
	return &JoinClause{Table: table, On: condition}, nil
}

// Boolean expressions, loosest binding first: OR, AND, NOT.

func (parser *Parser) parseExpr() (Expr, error) {
	return parser.parseOr()
}

func (parser *Parser) parseOr() (Expr, error) {
	left, err := parser.parseAnd()
	if err != nil {
		return nil, err
	}
	for parser.cur.Type == Or {
		parser.advance()
		right, err := parser.parseAnd()
		if err != nil {
			return nil, err
		}
		left = LogicExpr{Op: LogicOr, Left: left, Right: right}
	}
	return left, nil
}

func (parser *Parser) parseAnd() (Expr, error) {
	left, err := parser.parseNot()
	if err != nil {
		return nil, err
	}
	for parser.cur.Type == And {
		parser.advance()
		right, err := parser.parseNot()
		if err != nil {
			return nil, err
		}
		left = LogicExpr{Op: LogicAnd, Left: left, Right: right}
	}
	return left, nil
}

func (parser *Parser) parseNot() (Expr, error) {
	if parser.cur.Type == Not {
		parser.advance()
		inner, err := parser.parseNot()
		if err != nil {
			return nil, err
		}
		return NotExpr{Expr: inner}, nil
	}
	return parser.parsePredicate()
}

func (parser *Parser) parsePredicate() (Expr, error) {
	if parser.cur.Type == ParenOpen {
		parser.advance()
		inner, err := parser.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
		return inner, nil
	}

	left, err := parser.parseOperand()
	if err != nil {
		return nil, err
	}

	switch parser.cur.Type {
	case Equals, NotEquals, LessThan, GreaterThan, LessThanOrEqual, GreaterThanOrEqual:
		op := comparisonOp(parser.cur.Type)
		parser.advance()
		right, err := parser.parseOperand()
		if err != nil {
			return nil, err
		}
		return Comparison{Op: op, Left: left, Right: right}, nil
	case Is:
		parser.advance()
		negated := false
		if parser.cur.Type == Not {
			negated = true
			parser.advance()
		}
		if _, err := parser.expect(Null); err != nil {
			return nil, err
		}
		return IsNullExpr{Expr: left, Negated: negated}, nil
	case Between:
		return parser.parseBetween(left, false)
	case In:
		return parser.parseIn(left, false)
	case Like:
		return parser.parseLike(left, false)
	case Not:
		parser.advance()
		switch parser.cur.Type {
		case Between:
			return parser.parseBetween(left, true)
		case In:
			return parser.parseIn(left, true)
		case Like:
			return parser.parseLike(left, true)
		default:
			return nil, parser.syntaxError("BETWEEN, IN or LIKE")
		}
	default:
		// A bare operand, e.g. a BOOL column used directly as a filter.
		return left, nil
	}
}

func (parser *Parser) parseBetween(left Expr, negated bool) (Expr, error) {
	parser.advance() // consume BETWEEN
	low, err := parser.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := parser.expect(And); err != nil {
		return nil, err
	}
	high, err := parser.parseOperand()
	if err != nil {
		return nil, err
	}
	var expr Expr = BetweenExpr{Expr: left, Low: low, High: high}
	if negated {
		expr = NotExpr{Expr: expr}
	}
	return expr, nil
}

func (parser *Parser) parseIn(left Expr, negated bool) (Expr, error) {
	parser.advance() // consume IN
	if _, err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	var values []Expr
	for {
		value, err := parser.parseOperand()
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if parser.cur.Type != Comma {
			break
		}
		parser.advance()
	}
	if _, err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return InExpr{Expr: left, Values: values, Negated: negated}, nil
}

func (parser *Parser) parseLike(left Expr, negated bool) (Expr, error) {
	parser.advance() // consume LIKE
	pattern, err := parser.expect(String)
	if err != nil {
		return nil, err
	}
	return LikeExpr{Expr: left, Pattern: pattern.Value, Negated: negated}, nil
}

func (parser *Parser) parseOperand() (Expr, error) {
	switch parser.cur.Type {
	case Int, Float, String, True, False, Null:
		return parser.parseLiteral()
	case Count, Sum, Avg, Min, Max:
		return parser.parseAggregate()
	case Identifier:
		return parser.parseColumnRef()
	default:
		return nil, parser.syntaxError("value or column")
	}
}

func (parser *Parser) parseLiteral() (Literal, error) {
	token := parser.cur
	switch token.Type {
	case Int:
		n, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil {
			return Literal{}, SyntaxError{Pos: token.Pos, Got: token.String(), Expected: "integer"}
		}
		parser.advance()
		return Literal{Value: core.NewInt(n)}, nil
	case Float:
		f, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return Literal{}, SyntaxError{Pos: token.Pos, Got: token.String(), Expected: "number"}
		}
		parser.advance()
		return Literal{Value: core.NewFloat(f)}, nil
	case String:
		parser.advance()
		return Literal{Value: core.NewString(token.Value)}, nil
	case True:
		parser.advance()
		return Literal{Value: core.NewBool(true)}, nil
	case False:
		parser.advance()
		return Literal{Value: core.NewBool(false)}, nil
	case Null:
		parser.advance()
		return Literal{Value: core.Null()}, nil
	default:
		return Literal{}, parser.syntaxError("literal value")
	}
}

func (parser *Parser) parseNonNegativeInt() (int, error) {
	token, err := parser.expect(Int)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(token.Value)
	if err != nil || n < 0 {
		return 0, SyntaxError{Pos: token.Pos, Got: token.String(), Expected: "non-negative integer"}
	}
	return n, nil
}

func comparisonOp(tokenType TokenType) CompareOp {
	switch tokenType {
	case Equals:
		return CompareEquals
	case NotEquals:
		return CompareNotEquals
	case LessThan:
		return CompareLessThan
	case GreaterThan:
		return CompareGreaterThan
	case LessThanOrEqual:
		return CompareLessThanOrEqual
	default:
		return CompareGreaterThanOrEqual
	}
}

func (parser *Parser) parseInsert() (Statement, error) {
	parser.advance() // consume INSERT
	if _, err := parser.expect(Into); err != nil {
		return nil, err
	}
	table, err := parser.parseTableRef(false)
	if err != nil {
		return nil, err
	}
	statement := InsertStatement{Table: table}

	if parser.cur.Type == ParenOpen {
		parser.advance()
		for {
			column, err := parser.expect(Identifier)
			if err != nil {
				return nil, err
			}
			statement.Columns = append(statement.Columns, column.Value)
			if parser.cur.Type != Comma {
				break
			}
			parser.advance()
		}
		if _, err := parser.expect(ParenClose); err != nil {
			return nil, err
		}
	}

	if _, err := parser.expect(Values); err != nil {
		return nil, err
	}
	if _, err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	for {
		value, err := parser.parseLiteral()
		if err != nil {
			return nil, err
		}
		statement.Values = append(statement.Values, value)
		if parser.cur.Type != Comma {
			break
		}
		parser.advance()
	}
	if _, err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return statement, nil
}

func (parser *Parser) parseUpdate() (Statement, error) {
	parser.advance() // consume UPDATE
	table, err := parser.parseTableRef(false)
	if err != nil {
		return nil, err
	}
	statement := UpdateStatement{Table: table}

	if _, err := parser.expect(Set); err != nil {
		return nil, err
	}
	for {
		column, err := parser.expect(Identifier)
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(Equals); err != nil {
			return nil, err
		}
		value, err := parser.parseLiteral()
		if err != nil {
			return nil, err
		}
		statement.Sets = append(statement.Sets, SetClause{Column: column.Value, Value: value})
		if parser.cur.Type != Comma {
			break
		}
		parser.advance()
	}

	if parser.cur.Type == Where {
		parser.advance()
		where, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		statement.Where = where
	}
	return statement, nil
}

func (parser *Parser) parseDelete() (Statement, error) {
	parser.advance() // consume DELETE
	if _, err := parser.expect(From); err != nil {
		return nil, err
	}
	table, err := parser.parseTableRef(false)
	if err != nil {
		return nil, err
	}
	statement := DeleteStatement{Table: table}

	if parser.cur.Type == Where {
		parser.advance()
		where, err := parser.parseExpr()
		if err != nil {
			return nil, err
		}
		statement.Where = where
	}
	return statement, nil
}

func (parser *Parser) parseCreate() (Statement, error) {
	parser.advance() // consume CREATE
	switch parser.cur.Type {
	case DatabaseKeyword:
		parser.advance()
		name, err := parser.expect(Identifier)
		if err != nil {
			return nil, err
		}
		return CreateDatabaseStatement{Database: name.Value}, nil
	case TableKeyword:
		return parser.parseCreateTable()
	default:
		return nil, parser.syntaxError("DATABASE or TABLE")
	}
}

func (parser *Parser) parseCreateTable() (Statement, error) {
	parser.advance() // consume TABLE
	table, err := parser.parseTableRef(false)
	if err != nil {
		return nil, err
	}
	statement := CreateTableStatement{Table: table}

	if _, err := parser.expect(ParenOpen); err != nil {
		return nil, err
	}
	for {
		column, err := parser.parseColumnDefinition()
		if err != nil {
			return nil, err
		}
		statement.Columns = append(statement.Columns, column)
		if parser.cur.Type != Comma {
			break
		}
		parser.advance()
	}
	if _, err := parser.expect(ParenClose); err != nil {
		return nil, err
	}
	return statement, nil
}

func (parser *Parser) parseColumnDefinition() (core.Column, error) {
	name, err := parser.expect(Identifier)
	if err != nil {
		return core.Column{}, err
	}
	typeToken, err := parser.expect(Identifier)
	if err != nil {
		return core.Column{}, err
	}
	columnType, ok := columnTypeNamed(typeToken.Value)
	if !ok {
		return core.Column{}, SyntaxError{Pos: typeToken.Pos, Got: typeToken.String(), Expected: "column type"}
	}
	column := core.Column{Name: name.Value, Type: columnType}

	for {
		switch parser.cur.Type {
		case PrimaryKey:
			column.PrimaryKey = true
			parser.advance()
		case Unique:
			column.Unique = true
			parser.advance()
		case References:
			parser.advance()
			target, err := parser.expect(Identifier)
			if err != nil {
				return core.Column{}, err
			}
			if _, err := parser.expect(ParenOpen); err != nil {
				return core.Column{}, err
			}
			targetColumn, err := parser.expect(Identifier)
			if err != nil {
				return core.Column{}, err
			}
			if _, err := parser.expect(ParenClose); err != nil {
				return core.Column{}, err
			}
			column.References = &core.Reference{Table: target.Value, Column: targetColumn.Value}
		default:
			return column, nil
		}
	}
}

func columnTypeNamed(name string) (core.ColumnType, bool) {
	switch toUpper(name) {
	case "INT", "INTEGER":
		return core.IntType, true
	case "FLOAT", "DOUBLE":
		return core.FloatType, true
	case "STRING", "TEXT", "VARCHAR":
		return core.StringType, true
	case "BOOL", "BOOLEAN":
		return core.BoolType, true
	default:
		return 0, false
	}
}

func (parser *Parser) parseDrop() (Statement, error) {
	parser.advance() // consume DROP
	switch parser.cur.Type {
	case DatabaseKeyword:
		parser.advance()
		name, err := parser.expect(Identifier)
		if err != nil {
			return nil, err
		}
		return DropDatabaseStatement{Database: name.Value}, nil
	case TableKeyword:
		parser.advance()
		table, err := parser.parseTableRef(false)
		if err != nil {
			return nil, err
		}
		return DropTableStatement{Table: table}, nil
	default:
		return nil, parser.syntaxError("DATABASE or TABLE")
	}
}

func (parser *Parser) parseUse() (Statement, error) {
	parser.advance() // consume USE
	name, err := parser.expect(Identifier)
	if err != nil {
		return nil, err
	}
	return UseStatement{Database: name.Value}, nil
}

func (parser *Parser) parseShow() (Statement, error) {
	parser.advance() // consume SHOW
	switch parser.cur.Type {
	case DatabasesKeyword:
		parser.advance()
		return ShowDatabasesStatement{}, nil
	case TablesKeyword:
		parser.advance()
		statement := ShowTablesStatement{}
		// Both SHOW TABLES FROM db and SHOW TABLES IN db are accepted.
		if parser.cur.Type == From || parser.cur.Type == In {
			parser.advance()
			name, err := parser.expect(Identifier)
			if err != nil {
				return nil, err
			}
			statement.Database = name.Value
		}
		return statement, nil
	default:
		return nil, parser.syntaxError("DATABASES or TABLES")
	}
}

func (parser *Parser) parseDescribe() (Statement, error) {
	parser.advance() // consume DESCRIBE
	table, err := parser.parseTableRef(false)
	if err != nil {
		return nil, err
	}
	return DescribeStatement{Table: table}, nil
}
