package sql

type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

type TokenType int

const (
	Identifier TokenType = iota
	Int
	Float
	String
	Comma
	Dot
	ParenOpen
	ParenClose
	Semicolon
	Wildcard
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	Select
	From
	Where
	And
	Or
	Not
	Is
	Null
	Like
	Between
	In
	Group
	By
	Having
	Order
	Asc
	Desc
	Limit
	Offset
	Distinct
	As
	Inner
	Join
	On
	Create
	Drop
	Use
	Show
	Describe
	Insert
	Into
	Values
	Update
	Set
	Delete
	True
	False
	Count
	Sum
	Avg
	Min
	Max
	DatabaseKeyword
	DatabasesKeyword
	TableKeyword
	TablesKeyword
	PrimaryKey
	Unique
	References
	EOF
	Unknown
)

var tokenNames = map[TokenType]string{
	Identifier:         "Identifier",
	Int:                "Int",
	Float:              "Float",
	String:             "String",
	Comma:              ",",
	Dot:                ".",
	ParenOpen:          "(",
	ParenClose:         ")",
	Semicolon:          ";",
	Wildcard:           "*",
	Equals:             "=",
	NotEquals:          "!=",
	LessThan:           "<",
	GreaterThan:        ">",
	LessThanOrEqual:    "<=",
	GreaterThanOrEqual: ">=",
	Select:             "SELECT",
	From:               "FROM",
	Where:              "WHERE",
	And:                "AND",
	Or:                 "OR",
	Not:                "NOT",
	Is:                 "IS",
	Null:               "NULL",
	Like:               "LIKE",
	Between:            "BETWEEN",
	In:                 "IN",
	Group:              "GROUP",
	By:                 "BY",
	Having:             "HAVING",
	Order:              "ORDER",
	Asc:                "ASC",
	Desc:               "DESC",
	Limit:              "LIMIT",
	Offset:             "OFFSET",
	Distinct:           "DISTINCT",
	As:                 "AS",
	Inner:              "INNER",
	Join:               "JOIN",
	On:                 "ON",
	Create:             "CREATE",
	Drop:               "DROP",
	Use:                "USE",
	Show:               "SHOW",
	Describe:           "DESCRIBE",
	Insert:             "INSERT",
	Into:               "INTO",
	Values:             "VALUES",
	Update:             "UPDATE",
	Set:                "SET",
	Delete:             "DELETE",
	True:               "TRUE",
	False:              "FALSE",
	Count:              "COUNT",
	Sum:                "SUM",
	Avg:                "AVG",
	Min:                "MIN",
	Max:                "MAX",
	DatabaseKeyword:    "DATABASE",
	DatabasesKeyword:   "DATABASES",
	TableKeyword:       "TABLE",
	TablesKeyword:      "TABLES",
	PrimaryKey:         "PRIMARY KEY",
	Unique:             "UNIQUE",
	References:         "REFERENCES",
	EOF:                "EOF",
	Unknown:            "Unknown",
}

func (token Token) String() string {
	switch token.Type {
	case Identifier, Int, Float, String, Unknown:
		return tokenNames[token.Type] + "(" + token.Value + ")"
	default:
		return tokenNames[token.Type]
	}
}

var keywords = map[string]TokenType{
	"SELECT":     Select,
	"FROM":       From,
	"WHERE":      Where,
	"AND":        And,
	"OR":         Or,
	"NOT":        Not,
	"IS":         Is,
	"NULL":       Null,
	"LIKE":       Like,
	"BETWEEN":    Between,
	"IN":         In,
	"GROUP":      Group,
	"BY":         By,
	"HAVING":     Having,
	"ORDER":      Order,
	"ASC":        Asc,
	"DESC":       Desc,
	"LIMIT":      Limit,
	"OFFSET":     Offset,
	"DISTINCT":   Distinct,
	"AS":         As,
	"INNER":      Inner,
	"JOIN":       Join,
	"ON":         On,
	"CREATE":     Create,
	"DROP":       Drop,
	"USE":        Use,
	"SHOW":       Show,
	"DESCRIBE":   Describe,
	"INSERT":     Insert,
	"INTO":       Into,
	"VALUES":     Values,
	"UPDATE":     Update,
	"SET":        Set,
	"DELETE":     Delete,
	"TRUE":       True,
	"FALSE":      False,
	"COUNT":      Count,
	"SUM":        Sum,
	"AVG":        Avg,
	"MIN":        Min,
	"MAX":        Max,
	"DATABASE":   DatabaseKeyword,
	"DATABASES":  DatabasesKeyword,
	"TABLE":      TableKeyword,
	"TABLES":     TablesKeyword,
	"UNIQUE":     Unique,
	"REFERENCES": References,
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) NextToken() Token {
	lexer.skipWhitespace()

	pos := lexer.position
	var token Token

	switch lexer.ch {
	case ',':
		token = Token{Type: Comma, Value: string(lexer.ch), Pos: pos}
	case '.':
		token = Token{Type: Dot, Value: string(lexer.ch), Pos: pos}
	case '(':
		token = Token{Type: ParenOpen, Value: string(lexer.ch), Pos: pos}
	case ')':
		token = Token{Type: ParenClose, Value: string(lexer.ch), Pos: pos}
	case ';':
		token = Token{Type: Semicolon, Value: string(lexer.ch), Pos: pos}
	case '*':
		token = Token{Type: Wildcard, Value: string(lexer.ch), Pos: pos}
	case 0:
		token = Token{Type: EOF, Value: "", Pos: pos}
	case '\'':
		value, ok := lexer.readString()
		if !ok {
			return Token{Type: Unknown, Value: "'", Pos: pos}
		}
		return Token{Type: String, Value: value, Pos: pos}
	default:
		if isOperator(lexer.ch) {
			operator := lexer.readOperator()
			switch operator {
			case "=":
				return Token{Type: Equals, Value: operator, Pos: pos}
			case "!=", "<>":
				return Token{Type: NotEquals, Value: operator, Pos: pos}
			case "<":
				return Token{Type: LessThan, Value: operator, Pos: pos}
			case ">":
				return Token{Type: GreaterThan, Value: operator, Pos: pos}
			case "<=":
				return Token{Type: LessThanOrEqual, Value: operator, Pos: pos}
			case ">=":
				return Token{Type: GreaterThanOrEqual, Value: operator, Pos: pos}
			default:
				return Token{Type: Unknown, Value: operator, Pos: pos}
			}
		} else if isDigit(lexer.ch) || (lexer.ch == '-' && isDigit(lexer.peekChar())) {
			return lexer.readNumber(pos)
		} else if isLetter(lexer.ch) {
			literal := lexer.readIdentifier()
			if tokenType, ok := keywords[toUpper(literal)]; ok {
				return Token{Type: tokenType, Value: literal, Pos: pos}
			}
			// PRIMARY KEY is the only two-word token
			if toUpper(literal) == "PRIMARY" {
				lexer.skipWhitespace()
				next := lexer.readIdentifier()
				if toUpper(next) == "KEY" {
					return Token{Type: PrimaryKey, Value: "PRIMARY KEY", Pos: pos}
				}
				return Token{Type: Unknown, Value: literal + " " + next, Pos: pos}
			}
			return Token{Type: Identifier, Value: literal, Pos: pos}
		} else {
			token = Token{Type: Unknown, Value: string(lexer.ch), Pos: pos}
		}
	}

	lexer.readChar()
	return token
}

func (lexer *Lexer) skipWhitespace() {
	for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
		lexer.readChar()
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isLetter(lexer.ch) || isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func (lexer *Lexer) readString() (string, bool) {
	lexer.readChar() // skip opening quote
	position := lexer.position
	for lexer.ch != '\'' {
		if lexer.ch == 0 {
			return "", false
		}
		lexer.readChar()
	}
	str := lexer.sql[position:lexer.position]
	lexer.readChar() // skip closing quote
	return str, true
}

func (lexer *Lexer) readNumber(pos int) Token {
	position := lexer.position
	if lexer.ch == '-' {
		lexer.readChar()
	}
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	if lexer.ch == '.' && isDigit(lexer.peekChar()) {
		lexer.readChar() // consume '.'
		for isDigit(lexer.ch) {
			lexer.readChar()
		}
		return Token{Type: Float, Value: lexer.sql[position:lexer.position], Pos: pos}
	}
	return Token{Type: Int, Value: lexer.sql[position:lexer.position], Pos: pos}
}

func (lexer *Lexer) readOperator() string {
	position := lexer.position
	for isOperator(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOperator(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>'
}

// toUpper converts a string to uppercase without allocating for ASCII strings
func toUpper(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			b := make([]byte, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] >= 'a' && s[j] <= 'z' {
					b[j] = s[j] - 32
				} else {
					b[j] = s[j]
				}
			}
			return string(b)
		}
	}
	return s
}
