package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/services/user/domain/models"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts the user. A reused email is a Duplicate error.
func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email, phone, role, status, name, last_login_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			u.ID,
			u.Email.String(),
			u.Phone,
			string(u.Role),
			string(u.Status),
			u.Name,
			u.LastLoginAt,
			u.CreatedAt,
			u.UpdatedAt,
		)
		if err != nil {
			return database.Classify(fmt.Errorf("insert user: %w", err))
		}
		return nil
	})
}
