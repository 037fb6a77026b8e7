package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
)

const userColumns = `id, email, role, status, first_name, last_name, phone, gdpr_consent, locale,
	first_login_completed, created_at, updated_at, last_login`

type userRepository struct {
	db    *sql.DB
	table string // already quoted
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(db *sql.DB, table string) *userRepository {
	return &userRepository{
		db:    db,
		table: table,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Role, &u.Status, &u.FirstName, &u.LastName, &u.Phone,
		&u.GDPRConsent, &u.Locale, &u.FirstLoginCompleted,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, userColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan user")
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.table)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}
	return u, nil
}

func (r *userRepository) Insert(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, r.table, userColumns)

	_, err := r.db.ExecContext(ctx, query,
		string(user.ID), user.Email, string(user.Role), string(user.Status),
		user.FirstName, user.LastName, user.Phone,
		user.GDPRConsent, string(user.Locale), user.FirstLoginCompleted,
		user.CreatedAt, user.UpdatedAt, user.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "user already exists", goerr.V("user_id", user.ID))
		}
		return goerr.Wrap(err, "failed to insert user", goerr.V("user_id", user.ID))
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, id model.UserID, patch *model.UserPatch) error {
	sets := []string{"updated_at = $1"}
	args := []any{patch.UpdatedAt}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Role != nil {
		if *patch.Role == "" {
			return goerr.New("user role is required", goerr.V("user_id", id))
		}
		add("role", string(*patch.Role))
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return goerr.New("invalid user status", goerr.V("user_id", id), goerr.V("status", *patch.Status))
		}
		add("status", string(*patch.Status))
	}

	args = append(args, string(id))
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, r.table, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return goerr.Wrap(err, "failed to update user", goerr.V("user_id", id))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows", goerr.V("user_id", id))
	}
	if n == 0 {
		return goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, string(id)); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("user_id", id))
	}
	return nil
}
