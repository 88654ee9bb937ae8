// Package store provides the two retrieval stores: the relational subjects
// table and the embedding-based ordinance index, both on SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Unit is one syllabus unit of a subject.
type Unit struct {
	UnitNumber int      `json:"unit_number"`
	UnitName   string   `json:"unit_name"`
	Topics     []string `json:"topics"`
}

// Subject is one curriculum record.
type Subject struct {
	Name           string   `json:"name"`
	Semester       int      `json:"semester"`
	Department     string   `json:"department"`
	Credits        string   `json:"credits"`
	Status         string   `json:"status"`
	Code           string   `json:"code"`
	PreRequisites  []string `json:"pre_requisites"`
	Units          []Unit   `json:"units"`
	CourseMaterial []string `json:"course_material"`
}

// SubjectStore reads curriculum records from a SQLite database. The
// database is opened and closed within each call; no connection is held
// across tool invocations.
type SubjectStore struct {
	path string
}

// NewSubjectStore creates a store over the database file at path.
func NewSubjectStore(path string) *SubjectStore {
	return &SubjectStore{path: path}
}

// Query returns all subjects of a department, optionally narrowed to one
// semester (semester 0 means all semesters). Returns fs.ErrNotExist if the
// database file is missing.
func (s *SubjectStore) Query(ctx context.Context, department string, semester int) ([]Subject, error) {
	// os.Stat wraps fs.ErrNotExist, which callers test for.
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("store: database: %w", err)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	defer db.Close()

	query := `SELECT name, semester, department, credits, status, code,
		pre_requisites_json, units_json, course_material_json
		FROM subjects WHERE department = ?`
	params := []any{department}
	if semester != 0 {
		query += " AND semester = ?"
		params = append(params, semester)
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("store: query subjects: %w", err)
	}
	defer rows.Close()

	subjects := make([]Subject, 0)
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate subjects: %w", err)
	}

	return subjects, nil
}

func scanSubject(rows *sql.Rows) (Subject, error) {
	var subject Subject
	var preJSON, unitsJSON, materialJSON string

	if err := rows.Scan(
		&subject.Name, &subject.Semester, &subject.Department,
		&subject.Credits, &subject.Status, &subject.Code,
		&preJSON, &unitsJSON, &materialJSON,
	); err != nil {
		return Subject{}, fmt.Errorf("store: scan subject: %w", err)
	}

	if err := json.Unmarshal([]byte(preJSON), &subject.PreRequisites); err != nil {
		return Subject{}, fmt.Errorf("store: decode pre_requisites for %q: %w", subject.Code, err)
	}
	if err := json.Unmarshal([]byte(unitsJSON), &subject.Units); err != nil {
		return Subject{}, fmt.Errorf("store: decode units for %q: %w", subject.Code, err)
	}
	if err := json.Unmarshal([]byte(materialJSON), &subject.CourseMaterial); err != nil {
		return Subject{}, fmt.Errorf("store: decode course_material for %q: %w", subject.Code, err)
	}

	return subject, nil
}

// CreateSchema creates the subjects table if it does not exist.
func (s *SubjectStore) CreateSchema(ctx context.Context) error {
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("store: open database: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		semester INTEGER NOT NULL,
		department TEXT NOT NULL,
		credits TEXT NOT NULL,
		status TEXT NOT NULL,
		code TEXT NOT NULL,
		pre_requisites_json TEXT NOT NULL,
		units_json TEXT NOT NULL,
		course_material_json TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("store: create subjects table: %w", err)
	}

	return nil
}

// Insert adds one subject record, encoding the nested fields as JSON.
func (s *SubjectStore) Insert(ctx context.Context, subject Subject) error {
	preJSON, err := json.Marshal(subject.PreRequisites)
	if err != nil {
		return fmt.Errorf("store: encode pre_requisites: %w", err)
	}
	unitsJSON, err := json.Marshal(subject.Units)
	if err != nil {
		return fmt.Errorf("store: encode units: %w", err)
	}
	materialJSON, err := json.Marshal(subject.CourseMaterial)
	if err != nil {
		return fmt.Errorf("store: encode course_material: %w", err)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return fmt.Errorf("store: open database: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO subjects
		(name, semester, department, credits, status, code,
		 pre_requisites_json, units_json, course_material_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		subject.Name, subject.Semester, subject.Department,
		subject.Credits, subject.Status, subject.Code,
		string(preJSON), string(unitsJSON), string(materialJSON),
	)
	if err != nil {
		return fmt.Errorf("store: insert subject %q: %w", subject.Code, err)
	}

	return nil
}
