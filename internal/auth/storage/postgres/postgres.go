package postgres

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/goserg/rolegate/gen/auth/public/model"
	"github.com/goserg/rolegate/gen/auth/public/table"
	"github.com/goserg/rolegate/internal/auth/storage"
	"github.com/goserg/rolegate/internal/auth/users"
	"github.com/goserg/rolegate/internal/config"
	"github.com/goserg/rolegate/internal/migrate"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // postgresql driver
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

var _ storage.AuthStorage = (*Storage)(nil)

func New(ctx context.Context, l *logrus.Logger, cfg config.Postgres) (*Storage, error) {
	db, err := sql.Open("pgx", NewURLConnectionString(
		"postgres",
		cfg.Host+":"+strconv.Itoa(cfg.Port),
		cfg.DBName,
		cfg.Username,
		cfg.Password,
		cfg.SSLMode,
	))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	if err := migrate.UpAuthPostgres(db); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	s := newStorage(db, l)
	s.log.Info("auth storage connected")
	return s, nil
}

func newStorage(db *sql.DB, l *logrus.Logger) *Storage {
	return &Storage{
		db: db,
		log: l.WithFields(map[string]interface{}{
			"from": "auth-storage",
		}),
	}
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
		WHERE(table.Users.Username.EQ(postgres.String(name))).
		QueryContext(ctx, db, &dest)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}
	return convertDBUserToModel(dest.Users, dest.Roles), nil
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
		list = append(list, convertDBUserToModel(d.Users, d.Roles))
	}
	return list, nil
}

func (s *Storage) CreateUser(ctx context.Context, user users.User, roleName string) (users.User, error) {
	return inTx(ctx, s.db, func(tx *sql.Tx) (users.User, error) {
		var role model.Roles
		err := table.Roles.
			SELECT(table.Roles.AllColumns).
			WHERE(table.Roles.Name.EQ(postgres.String(roleName))).
			QueryContext(ctx, tx, &role)
		if err != nil {
			if errors.Is(err, qrm.ErrNoRows) {
				return users.User{}, storage.ErrUnknownRole
			}
			return users.User{}, err
		}

		dbUser := model.Users{
			ID:           user.ID,
			Username:     user.Name,
			PasswordHash: string(user.PasswordHash),
			RoleID:       role.ID,
			CreatedAt:    user.RegisteredAt,
		}
		_, err = table.Users.INSERT(table.Users.AllColumns).MODEL(dbUser).ExecContext(ctx, tx)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
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
	dbRoleMap := mapset.NewSet[string]()
	for _, role := range dbRoles {
		dbRoleMap.Add(role.Name)
	}
	for _, role := range roles {
		if dbRoleMap.Contains(role) {
			continue
		}
		_, err := table.Roles.
			INSERT(table.Roles.Name).
			VALUES(role).
			ON_CONFLICT(table.Roles.Name).DO_NOTHING().
			ExecContext(ctx, s.db)
		if err != nil {
			return err
		}
		dbRoleMap.Add(role)
		s.log.WithField("role", role).Info("role created")
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func convertDBUserToModel(user model.Users, role model.Roles) users.User {
	return users.User{
		ID:           user.ID,
		Name:         user.Username,
		RoleName:     role.Name,
		PasswordHash: []byte(user.PasswordHash),
		RegisteredAt: user.CreatedAt,
	}
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

func NewURLConnectionString(protocol, host, dbName, username, password, sslMode string) string {
	v := make(url.Values)
	if sslMode != "" {
		v.Set("sslmode", sslMode)
	}
	u := url.URL{
		Scheme:   protocol,
		Host:     host,
		Path:     dbName,
		User:     url.UserPassword(username, password),
		RawQuery: v.Encode(),
	}
	return u.String()
}
