package storage

import (
	"encoding/json"
	"fmt"

	"github.com/coraldb/coraldb/core"
)

// On disk every database is one JSON document: schema plus row data.
// Indexes are not persisted; they are rebuilt from the rows on load.

type tableDoc struct {
	Name    string        `json:"name"`
	Columns []core.Column `json:"columns"`
	Rows    [][]any       `json:"rows"`
}

type databaseDoc struct {
	Name   string     `json:"name"`
	Tables []tableDoc `json:"tables"`
}

func encodeDatabase(database *Database) ([]byte, error) {
	doc := databaseDoc{Name: database.Name}
	for _, table := range database.Tables() {
		td := tableDoc{Name: table.Name, Columns: table.Columns, Rows: [][]any{}}
		for _, row := range table.Rows() {
			values := make([]any, len(row.Values))
			for i, value := range row.Values {
				values[i] = value.Native()
			}
			td.Rows = append(td.Rows, values)
		}
		doc.Tables = append(doc.Tables, td)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decodeDatabase(data []byte) (*Database, error) {
	var doc databaseDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt database document: %w", err)
	}

	database := NewDatabase(doc.Name)
	for _, td := range doc.Tables {
		table, err := database.CreateTable(td.Name, td.Columns)
		if err != nil {
			return nil, fmt.Errorf("database %q: %w", doc.Name, err)
		}
		for _, raw := range td.Rows {
			if len(raw) != len(td.Columns) {
				return nil, fmt.Errorf("table %q: row has %d values, expected %d", td.Name, len(raw), len(td.Columns))
			}
			values := make([]core.Value, len(raw))
			for i, item := range raw {
				value, err := core.FromNative(item, td.Columns[i].Type)
				if err != nil {
					return nil, fmt.Errorf("table %q: %w", td.Name, err)
				}
				values[i] = value
			}
			table.rows = append(table.rows, Row{ID: table.nextRowID, Values: values})
			table.nextRowID++
		}
		table.RebuildIndexes()
	}
	return database, nil
}
