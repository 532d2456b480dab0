package main

/*
#include <stdlib.h>
*/
import "C"
import (
	"encoding/json"
	"unsafe"

	"github.com/coraldb/coraldb"
	"github.com/coraldb/coraldb/core"
	"github.com/coraldb/coraldb/db"
)

// Handle represents an open database instance
type Handle struct {
	instance *coraldb.Instance
	engine   *db.Engine
}

// Global handle storage (simplified - in production use a map with mutex)
var handles = make(map[int]*Handle)
var nextHandle = 1

// Response mirrors the server protocol for consistency
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string   `json:"columns"`
	Data            [][]string `json:"data"`
	RecordsRead     int        `json:"records_read"`
	ExecutionTimeMs float64    `json:"execution_time_ms"`
}

type CommitResponse struct {
	DatabasesCreated int     `json:"databases_created,omitempty"`
	DatabasesDeleted int     `json:"databases_deleted,omitempty"`
	TablesCreated    int     `json:"tables_created,omitempty"`
	TablesDeleted    int     `json:"tables_deleted,omitempty"`
	RecordsWritten   int     `json:"records_written,omitempty"`
	RecordsDeleted   int     `json:"records_deleted,omitempty"`
	ExecutionTimeMs  float64 `json:"execution_time_ms"`
}

func bindingIdentity() core.Identity {
	return core.Identity{
		Name:  "CoralDB Bindings",
		Email: "bindings@coraldb.local",
	}
}

//export coraldb_open_memory
func coraldb_open_memory() C.int {
	instance, err := coraldb.OpenMemory()
	if err != nil {
		return -1
	}

	return registerHandle(instance)
}

//export coraldb_open_file
func coraldb_open_file(path *C.char) C.int {
	goPath := C.GoString(path)

	instance, err := coraldb.OpenFile(goPath)
	if err != nil {
		return -1
	}

	return registerHandle(instance)
}

func registerHandle(instance *coraldb.Instance) C.int {
	handle := nextHandle
	nextHandle++
	handles[handle] = &Handle{
		instance: instance,
		engine:   instance.Engine(bindingIdentity()),
	}
	return C.int(handle)
}

//export coraldb_close
func coraldb_close(handle C.int) {
	delete(handles, int(handle))
}

//export coraldb_execute
func coraldb_execute(handle C.int, query *C.char) *C.char {
	h, ok := handles[int(handle)]
	if !ok {
		return makeErrorResponse("Invalid handle")
	}

	goQuery := C.GoString(query)
	result, err := h.engine.Execute(goQuery)

	if err != nil {
		return makeErrorResponse(err.Error())
	}

	var resp Response

	switch r := result.(type) {
	case db.QueryResult:
		qr := QueryResponse{
			Columns:         r.Columns,
			Data:            formatRows(r.Rows),
			RecordsRead:     r.RecordsRead,
			ExecutionTimeMs: r.ExecutionTimeSec * 1000,
		}
		data, _ := json.Marshal(qr)
		resp = Response{
			Success: true,
			Type:    "query",
			Result:  data,
		}

	case db.CommitResult:
		cr := CommitResponse{
			DatabasesCreated: r.DatabasesCreated,
			DatabasesDeleted: r.DatabasesDeleted,
			TablesCreated:    r.TablesCreated,
			TablesDeleted:    r.TablesDeleted,
			RecordsWritten:   r.RecordsWritten,
			RecordsDeleted:   r.RecordsDeleted,
			ExecutionTimeMs:  r.ExecutionTimeSec * 1000,
		}
		data, _ := json.Marshal(cr)
		resp = Response{
			Success: true,
			Type:    "commit",
			Result:  data,
		}

	default:
		resp = Response{
			Success: true,
			Type:    "unknown",
		}
	}

	jsonData, _ := json.Marshal(resp)
	return C.CString(string(jsonData))
}

func formatRows(rows [][]core.Value) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, value := range row {
			cells[j] = value.String()
		}
		out[i] = cells
	}
	return out
}

//export coraldb_free
func coraldb_free(ptr *C.char) {
	C.free(unsafe.Pointer(ptr))
}

func makeErrorResponse(msg string) *C.char {
	resp := Response{
		Success: false,
		Error:   msg,
	}
	jsonData, _ := json.Marshal(resp)
	return C.CString(string(jsonData))
}

func main() {}
