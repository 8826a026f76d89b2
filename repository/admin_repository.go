package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"orderingRoles/models"
)

// AdminRepository stores the admin allow-list in the admin_usernames table.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// List returns allow-list entries in insertion order.
func (r *AdminRepository) List(ctx context.Context) ([]models.AdminUsername, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT username, position FROM admin_usernames ORDER BY position, username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.AdminUsername
	for rows.Next() {
		var a models.AdminUsername
		if err := rows.Scan(&a.Username, &a.Position); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Load returns just the usernames, in order.
func (r *AdminRepository) Load(ctx context.Context) ([]string, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.Username)
	}
	return out, nil
}

// Add appends username to the allow-list. Adding an existing name is a no-op.
func (r *AdminRepository) Add(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO admin_usernames (username, position)
        SELECT ?, COALESCE(MAX(position), 0) + 1 FROM admin_usernames WHERE true
        ON CONFLICT(username) DO NOTHING`, username)
	return err
}

// Remove deletes username from the allow-list.
func (r *AdminRepository) Remove(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_usernames WHERE username = ?`, username)
	return err
}
