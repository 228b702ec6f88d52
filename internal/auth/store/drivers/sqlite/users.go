package sqlite

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
	db  dbtx
	now func() time.Time
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := r.now().Truncate(time.Second)
	u.ID = idx.NewAt(now).String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role.String(), now.Unix(), now.Unix(),
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

// UpdateUser merges in a single statement so concurrent updates to different
// fields of the same user cannot lose each other's writes.
func (r *usersRepo) UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error) {
	var role *string
	if upd.Role != nil {
		s := upd.Role.String()
		role = &s
	}

	u, err := r.getOne(ctx,
		`UPDATE users
		    SET email = COALESCE(?, email),
		        password_hash = COALESCE(?, password_hash),
		        role = COALESCE(?, role),
		        updated_at = ?
		  WHERE id = ?
		RETURNING `+userColumns,
		upd.Email, upd.PasswordHash, role, r.now().Unix(), id,
	)
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return u, nil
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var (
		u                    domain.User
		role                 string
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if u.Role, err = domain.ParseRole(role); err != nil {
		return domain.User{}, fmt.Errorf("sqlite: user %s: %w", u.ID, err)
	}
	u.CreatedAt = unixTime(createdAt)
	u.UpdatedAt = unixTime(updatedAt)
	return u, nil
}
