package sqlite

import (
	"context"
	"database/sql"
	"errors"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/google/uuid"
	"github.com/goserg/rolegate/gen/auth/sqlite/model"
	"github.com/goserg/rolegate/gen/auth/sqlite/table"
	"github.com/goserg/rolegate/internal/auth/storage"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/goserg/rolegate/internal/migrate"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.AuthStorage = (*Storage)(nil)

func New(l *logrus.Logger, fileName string) (*Storage, error) {
	log := l.WithFields(map[string]interface{}{
		"from": "auth-storage",
	})
	db, err := sql.Open("sqlite3", buildSource(fileName))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	err = migrate.UpAuthSqlite(db)
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}

	err = db.Ping()
	if err != nil {
		return nil, errors.Join(err, db.Close())
	}
	log.Info("auth storage connected")
	return &Storage{
		db:  db,
		log: log,
	}, nil
}

type userWithRole struct {
	model.Users
	Roles model.Roles
}

func (s *Storage) GetUserByName(ctx context.Context, name string) (users.User, error) {
	return getUserByName(ctx, s.db, name)
}

func getUserByName(ctx context.Context, db qrm.Queryable, name string) (users.User, error) {
	var dest userWithRole
	err := table.Users.
		SELECT(
			table.Users.AllColumns,
			table.Roles.AllColumns,
		).
		FROM(table.Users.INNER_JOIN(table.Roles, table.Roles.ID.EQ(table.Users.RoleID))).
		WHERE(table.Users.Username.EQ(sqlite.String(name))).
		QueryContext(ctx, db, &dest)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return convertUserToModel(dest.Users, dest.Roles)
}

func (s *Storage) ListUsers(ctx context.Context) ([]users.User, error) {
	var dest []userWithRole
	err := table.Users.
		SELECT(
			table.Users.AllColumns,
			table.Roles.AllColumns,
		).
		FROM(table.Users.INNER_JOIN(table.Roles, table.Roles.ID.EQ(table.Users.RoleID))).
		ORDER_BY(table.Users.CreatedAt.ASC(), table.Users.Username.ASC()).
		QueryContext(ctx, s.db, &dest)
	if err != nil {
		return nil, err
	}
	list := make([]users.User, 0, len(dest))
	for _, d := range dest {
		u, err := convertUserToModel(d.Users, d.Roles)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, nil
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, roleName string) (users.User, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.User, error) {
		var role model.Roles
		err := table.Roles.
			SELECT(table.Roles.AllColumns).
			WHERE(table.Roles.Name.EQ(sqlite.String(roleName))).
			QueryContext(ctx, tx, &role)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.User{}, storage.ErrUnknownRole
			}
			return users.User{}, err
		}

		dbUser := model.Users{
			ID:           user.ID.String(),
			Username:     user.Name,
			PasswordHash: string(user.PasswordHash),
			RoleID:       role.ID,
			CreatedAt:    user.RegisteredAt,
		}
		_, err = table.Users.INSERT(table.Users.AllColumns).MODEL(dbUser).ExecContext(ctx, tx)
		if err != nil {
			if isUniqueViolation(err) {
				return users.User{}, storage.ErrUserExists
			}
			return users.User{}, err
		}
		return getUserByName(ctx, tx, user.Name)
	})
}

func (s *Storage) EnsureRoles(ctx context.Context, roles []string) error {
	var dbRoles []model.Roles
	err := table.Roles.SELECT(table.Roles.AllColumns).QueryContext(ctx, s.db, &dbRoles)
	if err != nil {
		return err
	}
	existing := mapset.NewSet[string]()
	for _, role := range dbRoles {
		existing.Add(role.Name)
	}
	for _, role := range mapset.NewSet(roles...).Difference(existing).ToSlice() {
		_, err := table.Roles.INSERT(table.Roles.MutableColumns).MODEL(model.Roles{Name: role}).ExecContext(ctx, s.db)
		if err != nil {
			return err
		}
		s.log.WithField("role", role).Info("role created")
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

func convertUserToModel(user model.Users, role model.Roles) (users.User, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return users.User{}, err
	}
	return users.User{
		ID:           id,
		Name:         user.Username,
		RoleName:     role.Name,
		PasswordHash: []byte(user.PasswordHash),
		RegisteredAt: user.CreatedAt,
	}, nil
}

func inTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	value, err := fn(tx)
	if err != nil {
		return zero, errors.Join(err, tx.Rollback())
	}
	return value, tx.Commit()
}

func buildSource(fileName string) string {
	return "file:" + fileName + "?cache=shared&_foreign_keys=on"
}
