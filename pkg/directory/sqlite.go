package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// User is one registered member: credentials, the member's agent handle in
// the external runtime, and the group the member belongs to.
type User struct {
	Username  string
	Password  string
	AgentID   string
	AgentName string
	Group     string
}

// Group maps a group name to its shared agent handle and its member set.
// Member insertion order is preserved for storage but carries no meaning.
type Group struct {
	Name      string
	AgentID   string
	AgentName string
	Members   []string
}

// Repository is the narrow persistence surface behind the directory. It
// replaces the original design's process-wide mutable file dictionaries.
type Repository interface {
	GetUser(ctx context.Context, username string) (User, bool, error)
	PutUser(ctx context.Context, u User) error
	ListUsers(ctx context.Context) ([]User, error)
	GetGroup(ctx context.Context, name string) (Group, bool, error)
	PutGroup(ctx context.Context, g Group) error
	ListGroups(ctx context.Context) ([]Group, error)
}

// SQLiteRepository persists users and groups in a local sqlite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteDSNForFile builds the DSN for a file-backed directory database.
func SQLiteDSNForFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("directory store: empty path")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path), nil
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("directory store: empty dsn")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT NOT NULL PRIMARY KEY,
			password TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			group_name TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			name TEXT NOT NULL PRIMARY KEY,
			agent_id TEXT NOT NULL DEFAULT '',
			agent_name TEXT NOT NULL DEFAULT '',
			members_json TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE INDEX IF NOT EXISTS users_by_group ON users(group_name);`,
	}
	for _, st := range stmts {
		if _, err := r.db.Exec(st); err != nil {
			return errors.Wrap(err, "directory store: migrate")
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (User, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT username, password, agent_id, agent_name, group_name
		FROM users WHERE username = ?`, username)
	var u User
	err := row.Scan(&u.Username, &u.Password, &u.AgentID, &u.AgentName, &u.Group)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, errors.Wrap(err, "directory store: get user")
	}
	return u, true, nil
}

func (r *SQLiteRepository) PutUser(ctx context.Context, u User) error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("directory store: empty username")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users(username, password, agent_id, agent_name, group_name)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			password = excluded.password,
			agent_id = excluded.agent_id,
			agent_name = excluded.agent_name,
			group_name = excluded.group_name`,
		u.Username, u.Password, u.AgentID, u.AgentName, u.Group)
	return errors.Wrap(err, "directory store: put user")
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT username, password, agent_id, agent_name, group_name
		FROM users ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "directory store: list users")
	}
	defer func() { _ = rows.Close() }()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.Password, &u.AgentID, &u.AgentName, &u.Group); err != nil {
			return nil, errors.Wrap(err, "directory store: scan user")
		}
		users = append(users, u)
	}
	return users, errors.Wrap(rows.Err(), "directory store: list users")
}

func (r *SQLiteRepository) GetGroup(ctx context.Context, name string) (Group, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, agent_id, agent_name, members_json
		FROM groups WHERE name = ?`, name)
	var g Group
	var membersJSON string
	err := row.Scan(&g.Name, &g.AgentID, &g.AgentName, &membersJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Group{}, false, nil
	}
	if err != nil {
		return Group{}, false, errors.Wrap(err, "directory store: get group")
	}
	if err := json.Unmarshal([]byte(membersJSON), &g.Members); err != nil {
		return Group{}, false, errors.Wrap(err, "directory store: decode members")
	}
	return g, true, nil
}

func (r *SQLiteRepository) PutGroup(ctx context.Context, g Group) error {
	if strings.TrimSpace(g.Name) == "" {
		return errors.New("directory store: empty group name")
	}
	members := g.Members
	if members == nil {
		members = []string{}
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return errors.Wrap(err, "directory store: encode members")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO groups(name, agent_id, agent_name, members_json)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			agent_id = excluded.agent_id,
			agent_name = excluded.agent_name,
			members_json = excluded.members_json`,
		g.Name, g.AgentID, g.AgentName, string(membersJSON))
	return errors.Wrap(err, "directory store: put group")
}

func (r *SQLiteRepository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, agent_id, agent_name, members_json FROM groups ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "directory store: list groups")
	}
	defer func() { _ = rows.Close() }()
	var groups []Group
	for rows.Next() {
		var g Group
		var membersJSON string
		if err := rows.Scan(&g.Name, &g.AgentID, &g.AgentName, &membersJSON); err != nil {
			return nil, errors.Wrap(err, "directory store: scan group")
		}
		if err := json.Unmarshal([]byte(membersJSON), &g.Members); err != nil {
			return nil, errors.Wrap(err, "directory store: decode members")
		}
		groups = append(groups, g)
	}
	return groups, errors.Wrap(rows.Err(), "directory store: list groups")
}
