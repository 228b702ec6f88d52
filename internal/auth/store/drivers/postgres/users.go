package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/pkg/idx"
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

type usersRepo struct {
	db  querier
	now func() time.Time
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := r.now().Truncate(time.Second)
	u.ID = idx.NewAt(now).String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role.String(), now, now,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	var role *string
	if upd.Role != nil {
		s := upd.Role.String()
		role = &s
	}

	u, err := r.getOne(ctx,
		`UPDATE users
		    SET email = COALESCE($1, email),
		        password_hash = COALESCE($2, password_hash),
		        role = COALESCE($3, role),
		        updated_at = $4
		  WHERE id = $5
		RETURNING `+userColumns,
		upd.Email, upd.PasswordHash, role, r.now().Truncate(time.Second), id,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Role, err = domain.ParseRole(role); err != nil {
		return domain.User{}, fmt.Errorf("postgres: user %s: %w", u.ID, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
