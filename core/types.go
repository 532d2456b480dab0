package core

type ColumnType int

const (
	IntType ColumnType = iota
	FloatType
	StringType
	BoolType
)

func (t ColumnType) String() string {
	switch t {
	case IntType:
		return "INT"
	case FloatType:
		return "FLOAT"
	case StringType:
		return "STRING"
	case BoolType:
		return "BOOL"
	default:
		return "UNKNOWN"
	}
}

// Reference declares a foreign key target: values of the column should
// correspond to values of Column in Table. Enforced at delete time only.
type Reference struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type Column struct {
	Name       string     `json:"name"`
	Type       ColumnType `json:"type"`
	PrimaryKey bool       `json:"primaryKey,omitempty"`
	Unique     bool       `json:"unique,omitempty"`
	References *Reference `json:"references,omitempty"`
}

// Indexed reports whether the column carries an automatic hash index.
func (c Column) Indexed() bool {
	return c.PrimaryKey || c.Unique || c.References != nil
}

// Identity identifies the author of mutations, recorded in snapshot history.
type Identity struct {
	Name  string
	Email string
}
