// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite FOR A DEMO STORE?
// ────────────────────────────
// The default DSN keeps the database in memory, so nothing survives a
// restart, same as the slice backend. Point STORAGE_PATH at a file and
// you can inspect the demo data live with the sqlite3 CLI; the roster
// still wipes it back to the seed on every reset.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/alumnos-api/internal/apperr"
	"github.com/aanand-mishra/alumnos-api/internal/config"
	"github.com/aanand-mishra/alumnos-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

// New opens the database at cfg.Storage.Path, creates the tables if they
// do not exist and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// An in-memory database lives and dies with its connection. One
	// connection keeps every query looking at the same data.
	db.SetMaxOpenConns(1)

	// Schema:
	//   students.id  is assigned by us from meta.next_id, never by
	//                AUTOINCREMENT, so the counter survives Replace.
	//   meta         one row per counter; only next_id for now.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id             INTEGER  PRIMARY KEY,
			nombre         TEXT     NOT NULL,
			apellido       TEXT     NOT NULL,
			email          TEXT     NOT NULL,
			telefono       TEXT,
			curso          TEXT     NOT NULL,
			nivel          TEXT     NOT NULL,
			activo         INTEGER  NOT NULL,
			fecha_registro DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT    PRIMARY KEY,
			value INTEGER NOT NULL
		);
		INSERT OR IGNORE INTO meta (key, value) VALUES ('next_id', 1);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create tables: %w", err)
	}

	return &SQLite{Db: db}, nil
}

const selectColumns = `SELECT id, nombre, apellido, email, telefono, curso, nivel, activo, fecha_registro FROM students`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanStudent reads one row in selectColumns order.
func scanStudent(row rowScanner) (types.Student, error) {
	var (
		student types.Student
		phone   sql.NullString
	)

	err := row.Scan(
		&student.ID,
		&student.FirstName,
		&student.LastName,
		&student.Email,
		&phone,
		&student.Course,
		&student.Level,
		&student.Active,
		&student.RegisteredAt,
	)
	if err != nil {
		return types.Student{}, err
	}

	if phone.Valid {
		p := phone.String
		student.Phone = &p
	}
	return student, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// ─────────────────────────────────────────────────────────────────────────────
// List returns the rows matching filter, ordered by id.
//
// Ids are handed out in increasing order, so ORDER BY id is insertion
// order. Filtering happens in Go rather than in a WHERE clause: SQLite's
// lower() only folds ASCII, and "MATEMÁTICAS" must match "Matemáticas".
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) List(filter types.Filter) ([]types.Student, error) {
	rows, err := s.Db.Query(selectColumns + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		if filter.Match(student) {
			students = append(students, student)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return students, nil
}

// GetByID fetches exactly one row matched by primary key.
func (s *SQLite) GetByID(id int64) (types.Student, error) {
	return getByID(s.Db, id)
}

// querier lets getByID run inside or outside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getByID(q querier, id int64) (types.Student, error) {
	student, err := scanStudent(q.QueryRow(selectColumns+" WHERE id = ? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetByID: scan: %w", err)
	}
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Create inserts a new row.
//
// The duplicate check, the insert and the counter bump run in one
// transaction so a failure part-way leaves neither a row nor a burned id.
// The email comparison uses "=", which is case-sensitive in SQLite.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Create(student types.Student) (types.Student, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("Create: begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(1) FROM students WHERE email = ?", student.Email).Scan(&exists); err != nil {
		return types.Student{}, fmt.Errorf("Create: check email: %w", err)
	}
	if exists > 0 {
		return types.Student{}, fmt.Errorf("email %q: %w", student.Email, apperr.ErrConflict)
	}

	if err := tx.QueryRow("SELECT value FROM meta WHERE key = 'next_id'").Scan(&student.ID); err != nil {
		return types.Student{}, fmt.Errorf("Create: read next_id: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO students (id, nombre, apellido, email, telefono, curso, nivel, activo, fecha_registro)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.FirstName, student.LastName, student.Email,
		nullable(student.Phone), student.Course, student.Level, student.Active, student.RegisteredAt,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Create: insert: %w", err)
	}

	if _, err := tx.Exec("UPDATE meta SET value = value + 1 WHERE key = 'next_id'"); err != nil {
		return types.Student{}, fmt.Errorf("Create: bump next_id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("Create: commit: %w", err)
	}

	return student, nil
}

// Update reads the current row, applies the patch in Go and writes every
// mutable column back. id and fecha_registro are not in the SET list.
func (s *SQLite) Update(id int64, patch types.StudentPatch) (types.Student, error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: begin: %w", err)
	}
	defer tx.Rollback()

	student, err := getByID(tx, id)
	if err != nil {
		return types.Student{}, err
	}

	patch.Apply(&student)

	_, err = tx.Exec(
		`UPDATE students
		    SET nombre = ?, apellido = ?, email = ?, telefono = ?, curso = ?, nivel = ?, activo = ?
		  WHERE id = ?`,
		student.FirstName, student.LastName, student.Email, nullable(student.Phone),
		student.Course, student.Level, student.Active, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("Update: commit: %w", err)
	}

	return student, nil
}

// Delete removes a row by primary key.
func (s *SQLite) Delete(id int64) error {
	return s.execOne("Delete", id, "DELETE FROM students WHERE id = ?", id)
}

// SetActive flips activo on one row.
func (s *SQLite) SetActive(id int64, active bool) error {
	return s.execOne("SetActive", id, "UPDATE students SET activo = ? WHERE id = ?", active, id)
}

// execOne runs a statement that must touch exactly one row; zero rows
// affected means the id does not exist.
func (s *SQLite) execOne(op string, id int64, query string, args ...any) error {
	result, err := s.Db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("student %d: %w", id, apperr.ErrNotFound)
	}

	return nil
}

// Count returns the number of rows in students.
func (s *SQLite) Count() (int, error) {
	var n int
	if err := s.Db.QueryRow("SELECT COUNT(1) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// Replace wipes the table and inserts seed in order, all in one
// transaction so readers never see a half-seeded roster.
func (s *SQLite) Replace(seed []types.Student, nextID int64) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("Replace: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM students"); err != nil {
		return fmt.Errorf("Replace: clear: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO students (id, nombre, apellido, email, telefono, curso, nivel, activo, fecha_registro)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("Replace: prepare: %w", err)
	}
	defer stmt.Close()

	for _, st := range seed {
		_, err := stmt.Exec(
			st.ID, st.FirstName, st.LastName, st.Email, nullable(st.Phone),
			st.Course, st.Level, st.Active, st.RegisteredAt,
		)
		if err != nil {
			return fmt.Errorf("Replace: insert %d: %w", st.ID, err)
		}
	}

	if _, err := tx.Exec("UPDATE meta SET value = ? WHERE key = 'next_id'", nextID); err != nil {
		return fmt.Errorf("Replace: set next_id: %w", err)
	}

	return tx.Commit()
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
