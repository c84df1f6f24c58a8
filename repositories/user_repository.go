package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/dcode-github/realestate_console/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO users (username, password, role, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `, u.Username, u.Password, u.Role)
	return mapWriteError(row.Scan(&u.ID, &u.CreatedAt))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
        SELECT id, username, password, role, created_at FROM users WHERE username=$1
    `, username).Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
