package repository

import (
	"context"

	"orderingRoles/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Upsert(ctx context.Context, email, username, role string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

// AdminRepositoryI defines operations on the admin allow-list.
type AdminRepositoryI interface {
	List(ctx context.Context) ([]models.AdminUsername, error)
	Load(ctx context.Context) ([]string, error)
	Add(ctx context.Context, username string) error
	Remove(ctx context.Context, username string) error
}

var (
	_ UserRepositoryI  = (*UserRepository)(nil)
	_ AdminRepositoryI = (*AdminRepository)(nil)
)
