package http

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// memDB is a tiny in-memory stand-in for the users table, exposed
// through a database/sql driver so handlers run against the real Store.
type memDB struct {
	mu    sync.Mutex
	users []memUser
}

type memUser struct {
	id       string
	email    string
	username string
	hash     string
	created  time.Time
}

func openMemDB() (*sql.DB, *memDB) {
	m := &memDB{}
	return sql.OpenDB(memConnector{db: m}), m
}

type memConnector struct{ db *memDB }

func (c memConnector) Connect(context.Context) (driver.Conn, error) {
	return &memConn{db: c.db}, nil
}

func (c memConnector) Driver() driver.Driver { return memDriver{} }

type memDriver struct{}

func (memDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open through the connector")
}

type memConn struct{ db *memDB }

func (c *memConn) Prepare(query string) (driver.Stmt, error) {
	return &memStmt{db: c.db, query: query}, nil
}

func (c *memConn) Close() error              { return nil }
func (c *memConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }

type memStmt struct {
	db    *memDB
	query string
}

func (s *memStmt) Close() error  { return nil }
func (s *memStmt) NumInput() int { return -1 }

func (s *memStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.RowsAffected(0), nil
}

func (s *memStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	switch {
	case strings.Contains(s.query, "INSERT INTO saved_recipes"):
		return &memRows{cols: []string{"created_at"}, rows: [][]driver.Value{{time.Now().UTC()}}}, nil
	case strings.Contains(s.query, "FROM saved_recipes"):
		return &memRows{cols: []string{
			"id", "user_id", "title", "source_url", "image_url",
			"ingredients", "instructions", "prep_time", "cook_time", "servings", "created_at",
		}}, nil

	case strings.Contains(s.query, "INSERT INTO users"):
		u := memUser{
			id:       asString(args[0]),
			email:    asString(args[1]),
			username: asString(args[2]),
			hash:     asString(args[3]),
			created:  time.Now().UTC(),
		}
		s.db.users = append(s.db.users, u)
		return &memRows{cols: []string{"created_at"}, rows: [][]driver.Value{{u.created}}}, nil

	case strings.Contains(s.query, "WHERE email"):
		return s.db.userRows(func(u memUser) bool { return u.email == asString(args[0]) }), nil
	case strings.Contains(s.query, "WHERE username"):
		return s.db.userRows(func(u memUser) bool { return u.username == asString(args[0]) }), nil
	case strings.Contains(s.query, "WHERE id"):
		return s.db.userRows(func(u memUser) bool { return u.id == asString(args[0]) }), nil
	}

	return &memRows{}, nil
}

func (m *memDB) userRows(match func(memUser) bool) *memRows {
	rows := &memRows{cols: []string{"id", "email", "username", "password_hash", "created_at"}}
	for _, u := range m.users {
		if match(u) {
			rows.rows = append(rows.rows, []driver.Value{u.id, u.email, u.username, u.hash, u.created})
		}
	}
	return rows
}

func asString(v driver.Value) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

type memRows struct {
	cols []string
	rows [][]driver.Value
	i    int
}

func (r *memRows) Columns() []string { return r.cols }
func (r *memRows) Close() error      { return nil }

func (r *memRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}
