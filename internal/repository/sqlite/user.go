package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/user-registry/internal/domain"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectUser = `SELECT id, COALESCE(firstname, ''), COALESCE(lastname, ''), age,
	COALESCE(password, ''), COALESCE(email, '') FROM users`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := domain.ValidateNewUser(domain.NewUser{
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Email:     user.Email,
		Password:  user.Password,
	})
	if err != nil {
		return err
	}

	return r.db.WithConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx,
			`INSERT INTO users (firstname, lastname, age, password, email)
			 VALUES (?, ?, ?, ?, ?)`,
			user.Firstname, user.Lastname, nullableInt(user.Age), user.Password, user.Email,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return domain.ErrDuplicateEmail
			}
			return dbError("insert user", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return dbError("get last insert id", err)
		}
		user.ID = id
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := r.db.WithConn(ctx, func(conn *sql.Conn) error {
		var err error
		user, err = getByID(ctx, conn, id)
		return err
	})
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.db.WithConn(ctx, func(conn *sql.Conn) error {
		var err error
		user, err = scanUser(conn.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return dbError("query user by email", err)
		}
		return err
	})
	return user, err
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.WithConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			`SELECT id, COALESCE(firstname, ''), COALESCE(lastname, ''), age, COALESCE(email, '')
			 FROM users ORDER BY id`)
		if err != nil {
			return dbError("list users", err)
		}
		defer rows.Close()

		for rows.Next() {
			var u domain.User
			var age sql.NullInt64
			if err := rows.Scan(&u.ID, &u.Firstname, &u.Lastname, &age, &u.Email); err != nil {
				return dbError("scan user", err)
			}
			u.Age = intPtr(age)
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			return dbError("list users", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Update sets one field and reads the row back on the same connection.
func (r *UserRepository) Update(ctx context.Context, id int64, field domain.Field, value string) (*domain.User, error) {
	column, ok := field.Column()
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not updatable", domain.ErrInvalidInput, field)
	}

	var user *domain.User
	err := r.db.WithConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx,
			`UPDATE users SET `+column+` = ? WHERE id = ?`, value, id,
		); err != nil {
			return dbError("update user", err)
		}

		var err error
		user, err = getByID(ctx, conn, id)
		return err
	})
	return user, err
}

// Delete removes the user. Deleting an unknown id is not an error.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return dbError("delete user", err)
		}
		return nil
	})
}

func getByID(ctx context.Context, q rowQueryer, id int64) (*domain.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, dbError("query user by id", err)
	}
	return user, err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var age sql.NullInt64
	err := row.Scan(&user.ID, &user.Firstname, &user.Lastname, &age, &user.Password, &user.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.Age = intPtr(age)
	return user, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
