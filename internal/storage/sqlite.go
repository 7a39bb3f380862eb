package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dekarrin/yarnspinner/internal/yarn"
	"modernc.org/sqlite"
)

// SQLiteStorage is a yarn.VariableStorage backed by a single SQLite table,
// letting a host persist dialogue variables across process restarts.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if necessary) a SQLite database at file
// and ensures its variables table exists.
func NewSQLiteStorage(file string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS variables (
		name TEXT NOT NULL PRIMARY KEY,
		value_type INTEGER NOT NULL,
		value_text TEXT NOT NULL
	);`)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Get(name string) (yarn.Value, bool) {
	row := s.db.QueryRow(`SELECT value_type, value_text FROM variables WHERE name = ?;`, name)

	var vt int
	var text string
	if err := row.Scan(&vt, &text); err != nil {
		return yarn.NewNull(), false
	}

	return decodeValue(yarn.ValueType(vt), text), true
}

func (s *SQLiteStorage) Set(name string, v yarn.Value) error {
	vt, text := encodeValue(v)
	_, err := s.db.Exec(
		`INSERT INTO variables (name, value_type, value_text) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value_type = excluded.value_type, value_text = excluded.value_text;`,
		name, int(vt), text,
	)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *SQLiteStorage) Clear() error {
	_, err := s.db.Exec(`DELETE FROM variables;`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

// encodeValue reduces a Value to the (type tag, text) pair variables are
// stored as; Variable-typed values never reach storage, so they're not
// handled here.
func encodeValue(v yarn.Value) (yarn.ValueType, string) {
	switch v.Type() {
	case yarn.Number:
		return yarn.Number, fmt.Sprintf("%g", v.AsNumber())
	case yarn.Bool:
		return yarn.Bool, fmt.Sprintf("%t", v.AsBool())
	case yarn.String:
		return yarn.String, v.AsString()
	default:
		return yarn.Null, ""
	}
}

func decodeValue(vt yarn.ValueType, text string) yarn.Value {
	switch vt {
	case yarn.Number:
		var n float32
		fmt.Sscanf(text, "%g", &n)
		return yarn.NewNumber(n)
	case yarn.Bool:
		return yarn.NewBool(text == "true")
	case yarn.String:
		return yarn.NewString(text)
	default:
		return yarn.NewNull()
	}
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
