// Package datarecording stores simulation records into SQLite tables. Each
// table holds one struct type and each exported field becomes a column.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a table whose columns follow the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry. The entry must have the type that the
	// table was created with.
	InsertData(tableName string, entry any) error

	// Tables returns the names of all tables created by the recorder.
	Tables() []string

	// Flush writes all the buffered entries into the database.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

const defaultBatchSize = 10000

type table struct {
	structType reflect.Type
	columns    []string
	entries    []any
}

// SQLiteRecorder is a DataRecorder that writes into a SQLite database.
type SQLiteRecorder struct {
	*sql.DB

	path      string
	tables    map[string]*table
	order     []string
	batchSize int
	buffered  int
}

// New creates a SQLiteRecorder that writes into path + ".sqlite3". An empty
// path picks a unique file name. The file must not exist. Buffered entries
// are flushed when the program exits through atexit.Exit.
func New(path string) (*SQLiteRecorder, error) {
	if path == "" {
		path = "axiconnect_trace_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}

	r := NewWithDB(db)
	r.path = filename

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing %s: %v\n", filename, err)
		}
	})

	return r, nil
}

// NewWithDB creates a SQLiteRecorder that writes into an opened database.
func NewWithDB(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{
		DB:        db,
		tables:    make(map[string]*table),
		batchSize: defaultBatchSize,
	}
}

// Path returns the database file, or "" if the database was given.
func (r *SQLiteRecorder) Path() string {
	return r.path
}

// SetBatchSize sets how many entries are buffered before an automatic
// flush.
func (r *SQLiteRecorder) SetBatchSize(n int) {
	if n <= 0 {
		panic("batch size must be positive")
	}

	r.batchSize = n
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("entry of type %v is not a struct", t)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			return fmt.Errorf("field %s of %s is not exported",
				field.Name, t.Name())
		}

		if !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of %s has unsupported kind %s",
				field.Name, t.Name(), field.Type.Kind())
		}
	}

	return nil
}

// CreateTable creates a table whose columns follow the fields of
// sampleEntry.
func (r *SQLiteRecorder) CreateTable(tableName string, sampleEntry any) error {
	if _, exists := r.tables[tableName]; exists {
		return fmt.Errorf("table %s already exists", tableName)
	}

	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	columns := structs.Names(sampleEntry)
	query := "CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(columns, ",\n\t") + "\n);"

	if _, err := r.Exec(query); err != nil {
		return fmt.Errorf("creating table %s: %w", tableName, err)
	}

	r.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		columns:    columns,
	}
	r.order = append(r.order, tableName)

	return nil
}

// InsertData buffers an entry and flushes when the batch is full.
func (r *SQLiteRecorder) InsertData(tableName string, entry any) error {
	t, exists := r.tables[tableName]
	if !exists {
		return fmt.Errorf("table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		return fmt.Errorf("table %s stores %s, got %T",
			tableName, t.structType, entry)
	}

	t.entries = append(t.entries, entry)
	r.buffered++

	if r.buffered >= r.batchSize {
		return r.Flush()
	}

	return nil
}

// Tables returns the names of all tables in creation order.
func (r *SQLiteRecorder) Tables() []string {
	tables := make([]string, len(r.order))
	copy(tables, r.order)

	return tables
}

// Flush writes all buffered entries in a single transaction.
func (r *SQLiteRecorder) Flush() error {
	if r.buffered == 0 {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	for _, name := range r.order {
		if err := r.flushTable(tx, name, r.tables[name]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	r.buffered = 0

	return nil
}

func (r *SQLiteRecorder) flushTable(tx *sql.Tx, name string, t *table) error {
	if len(t.entries) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", len(t.columns)), ", ")
	stmt, err := tx.Prepare(
		"INSERT INTO " + name + " VALUES (" + placeholders + ")")
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", name, err)
	}
	defer stmt.Close()

	for _, entry := range t.entries {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			return fmt.Errorf("inserting into %s: %w", name, err)
		}
	}

	t.entries = nil

	return nil
}

// Close flushes the buffered entries and closes the database.
func (r *SQLiteRecorder) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}

	return r.DB.Close()
}

// Count returns the number of rows stored in a table.
func (r *SQLiteRecorder) Count(tableName string) (int, error) {
	if _, exists := r.tables[tableName]; !exists {
		return 0, fmt.Errorf("table %s does not exist", tableName)
	}

	var n int

	err := r.QueryRow("SELECT COUNT(*) FROM " + tableName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", tableName, err)
	}

	return n, nil
}
