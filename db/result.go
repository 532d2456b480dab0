package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/coraldb/coraldb/core"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
)

type Result interface {
	Type() ResultType
	Display()
}

// QueryResult carries the output of a query or introspection
// statement: ordered columns and typed rows.
type QueryResult struct {
	Columns          []string
	Rows             [][]core.Value
	RecordsRead      int
	ExecutionTimeSec float64
}

// CommitResult summarizes a mutating statement.
type CommitResult struct {
	DatabasesCreated int
	DatabasesDeleted int
	TablesCreated    int
	TablesDeleted    int
	RecordsWritten   int
	RecordsDeleted   int
	ExecutionTimeSec float64
}

func (result QueryResult) Type() ResultType {
	return QueryResultType
}

func (result CommitResult) Type() ResultType {
	return CommitResultType
}

// formatDuration formats a duration in human-readable form
func formatDuration(secs float64) string {
	if secs < 0.001 {
		return "<1ms"
	} else if secs < 1 {
		ms := secs * 1000
		if ms < 10 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	} else if secs < 60 {
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	}
	mins := int(secs / 60)
	remainSecs := int(secs) % 60
	if remainSecs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm%ds", mins, remainSecs)
}

func (result QueryResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result CommitResult) ExecutionTime() string {
	return formatDuration(result.ExecutionTimeSec)
}

func (result QueryResult) Display() {
	if len(result.Rows) > 0 {
		table := NewTable(os.Stdout)
		table.Header(result.Columns)
		for _, row := range result.Rows {
			cells := make([]string, len(row))
			for i, value := range row {
				cells[i] = value.String()
			}
			table.Row(cells)
		}
		table.Render()
	}

	fmt.Printf("%d row(s) (%s)\n", len(result.Rows), result.ExecutionTime())
}

func (result CommitResult) Display() {
	var parts []string

	if result.DatabasesCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d database(s) created", result.DatabasesCreated))
	}
	if result.DatabasesDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d database(s) deleted", result.DatabasesDeleted))
	}
	if result.TablesCreated > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) created", result.TablesCreated))
	}
	if result.TablesDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d table(s) deleted", result.TablesDeleted))
	}
	if result.RecordsWritten > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) written", result.RecordsWritten))
	}
	if result.RecordsDeleted > 0 {
		parts = append(parts, fmt.Sprintf("%d record(s) deleted", result.RecordsDeleted))
	}

	if len(parts) == 0 {
		fmt.Printf("OK (%s)\n", result.ExecutionTime())
	} else {
		fmt.Printf("%s (%s)\n", strings.Join(parts, ", "), result.ExecutionTime())
	}
}
