package sql

import "github.com/coraldb/coraldb/core"

type StatementType int

const (
	SelectStatementType StatementType = iota
	InsertStatementType
	UpdateStatementType
	DeleteStatementType
	CreateTableStatementType
	DropTableStatementType
	CreateDatabaseStatementType
	DropDatabaseStatementType
	UseStatementType
	ShowDatabasesStatementType
	ShowTablesStatementType
	DescribeStatementType
)

type Statement interface {
	Type() StatementType
}

// TableRef names a table, optionally qualified with a database and
// optionally aliased. An empty Database resolves against the session's
// current database.
type TableRef struct {
	Database string
	Table    string
	Alias    string
}

type SelectStatement struct {
	Star     bool
	Items    []SelectItem
	Table    TableRef
	Join     *JoinClause
	Where    Expr
	GroupBy  []ColumnRef
	Having   Expr
	OrderBy  []OrderByClause
	Distinct bool
	Limit    int // -1 when absent
	Offset   int // -1 when absent
}

// SelectItem is one projected expression. Expr is either a *ColumnRef
// or an *AggregateExpr; the parser admits nothing else.
type SelectItem struct {
	Expr  Expr
	Alias string
}

type JoinClause struct {
	Table TableRef
	On    Expr
}

type OrderByClause struct {
	Column     ColumnRef
	Descending bool
}

type InsertStatement struct {
	Table   TableRef
	Columns []string // empty means schema order
	Values  []Expr   // literals only
}

type SetClause struct {
	Column string
	Value  Expr // literal only
}

type UpdateStatement struct {
	Table TableRef
	Sets  []SetClause
	Where Expr
}

type DeleteStatement struct {
	Table TableRef
	Where Expr
}

type CreateTableStatement struct {
	Table   TableRef
	Columns []core.Column
}

type DropTableStatement struct {
	Table TableRef
}

type CreateDatabaseStatement struct {
	Database string
}

type DropDatabaseStatement struct {
	Database string
}

type UseStatement struct {
	Database string
}

type ShowDatabasesStatement struct{}

type ShowTablesStatement struct {
	Database string // empty means current database
}

type DescribeStatement struct {
	Table TableRef
}

func (s SelectStatement) Type() StatementType         { return SelectStatementType }
func (s InsertStatement) Type() StatementType         { return InsertStatementType }
func (s UpdateStatement) Type() StatementType         { return UpdateStatementType }
func (s DeleteStatement) Type() StatementType         { return DeleteStatementType }
func (s CreateTableStatement) Type() StatementType    { return CreateTableStatementType }
func (s DropTableStatement) Type() StatementType      { return DropTableStatementType }
func (s CreateDatabaseStatement) Type() StatementType { return CreateDatabaseStatementType }
func (s DropDatabaseStatement) Type() StatementType   { return DropDatabaseStatementType }
func (s UseStatement) Type() StatementType            { return UseStatementType }
func (s ShowDatabasesStatement) Type() StatementType  { return ShowDatabasesStatementType }
func (s ShowTablesStatement) Type() StatementType     { return ShowTablesStatementType }
func (s DescribeStatement) Type() StatementType       { return DescribeStatementType }

// Expr is the closed set of expression nodes. Consumers dispatch with a
// type switch and must treat an unhandled node as a bug.
type Expr interface {
	exprNode()
}

type Literal struct {
	Value core.Value
}

// ColumnRef names a column, optionally qualified with a table name or
// alias for joined queries.
type ColumnRef struct {
	Table string
	Name  string
}

func (r ColumnRef) String() string {
	if r.Table != "" {
		return r.Table + "." + r.Name
	}
	return r.Name
}

type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggregateFunc) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// AggregateExpr is an aggregate call: COUNT(*), COUNT(col), or
// SUM/AVG/MIN/MAX(col). Star is set only for COUNT(*).
type AggregateExpr struct {
	Func   AggregateFunc
	Column ColumnRef
	Star   bool
}

// Name returns the canonical output column name, e.g. "COUNT(*)".
func (a AggregateExpr) Name() string {
	if a.Star {
		return a.Func.String() + "(*)"
	}
	return a.Func.String() + "(" + a.Column.String() + ")"
}

type CompareOp int

const (
	CompareEquals CompareOp = iota
	CompareNotEquals
	CompareLessThan
	CompareGreaterThan
	CompareLessThanOrEqual
	CompareGreaterThanOrEqual
)

func (op CompareOp) String() string {
	switch op {
	case CompareEquals:
		return "="
	case CompareNotEquals:
		return "!="
	case CompareLessThan:
		return "<"
	case CompareGreaterThan:
		return ">"
	case CompareLessThanOrEqual:
		return "<="
	case CompareGreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}

type Comparison struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

type LogicOp int

const (
	LogicAnd LogicOp = iota
	LogicOr
)

type LogicExpr struct {
	Op    LogicOp
	Left  Expr
	Right Expr
}

type NotExpr struct {
	Expr Expr
}

type IsNullExpr struct {
	Expr    Expr
	Negated bool
}

// BetweenExpr is inclusive on both bounds.
type BetweenExpr struct {
	Expr Expr
	Low  Expr
	High Expr
}

type InExpr struct {
	Expr    Expr
	Values  []Expr
	Negated bool
}

// LikeExpr matches Pattern as a fully anchored pattern with wildcards
// % (any sequence) and _ (any single character).
type LikeExpr struct {
	Expr    Expr
	Pattern string
	Negated bool
}

func (Literal) exprNode()       {}
func (ColumnRef) exprNode()     {}
func (AggregateExpr) exprNode() {}
func (Comparison) exprNode()    {}
func (LogicExpr) exprNode()     {}
func (NotExpr) exprNode()       {}
func (IsNullExpr) exprNode()    {}
func (BetweenExpr) exprNode()   {}
func (InExpr) exprNode()        {}
func (LikeExpr) exprNode()      {}
