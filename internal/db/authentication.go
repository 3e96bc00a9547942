package db

import (
	"context"
	"errors"
	"time"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"gitlab.com/ranfdev/polls/internal/models"
	"gitlab.com/ranfdev/polls/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (sdb *SharedDB) CreateUser(ctx context.Context, username string, passwd string) (*models.User, error) {
	if !models.ValidateUsername(username) {
		return nil, models.ErrInvalidFormat
	}
	if !validatePasswd(passwd, username) {
		return nil, models.ErrWeakPasswd
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), sdb.bcryptCost)
	if err != nil {
		return nil, err
	}

	sql, args, _ := psql.
		Insert("users").
		Columns("username", "passwd_hash").
		Values(username, string(hash)).
		Suffix("RETURNING id, username, created_at").
		ToSql()

	user := &models.User{}
	err = pgxscan.Get(ctx, sdb.db, user, sql, args...)
	if code, constraint := pgErrCode(err); code == codeUniqueViolation && constraint == "users_username_key" {
		return nil, models.ErrUsernameTaken
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a new session token.
func (sdb *SharedDB) Login(ctx context.Context, username string, passwd string) (token string, user *models.User, err error) {
	sql, args, _ := psql.
		Select("id", "username", "created_at", "passwd_hash").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()

	var data struct {
		models.User
		PasswdHash string `db:"passwd_hash"`
	}
	err = pgxscan.Get(ctx, sdb.db, &data, sql, args...)
	if pgxscan.NotFound(err) {
		return "", nil, models.ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(data.PasswdHash), []byte(passwd))
	if errors.Is(compareErr, bcrypt.ErrMismatchedHashAndPassword) {
		return "", nil, models.ErrBadCredentials
	} else if compareErr != nil {
		return "", nil, compareErr
	}

	token, err = utils.GenToken(TokenLen)
	if err != nil {
		return "", nil, err
	}
	sql, args, _ = psql.
		Insert("tokens").
		Columns("user_id", "token").
		Values(data.ID, token).
		ToSql()

	_, err = sdb.db.Exec(ctx, sql, args...)
	if err != nil {
		return "", nil, err
	}
	return token, &data.User, nil
}

func (sdb *SharedDB) Signout(ctx context.Context, token string) error {
	sql, args, _ := psql.Delete("tokens").Where(sq.Eq{"token": token}).ToSql()
	_, err := sdb.db.Exec(ctx, sql, args...)
	return err
}

func (sdb *SharedDB) GetUserByToken(ctx context.Context, token string) (*models.User, error) {
	sql, args, _ := psql.
		Select("users.id", "users.username", "users.created_at").
		From("tokens").
		Join("users ON users.id = tokens.user_id").
		Where(sq.Eq{"tokens.token": token}).
		Where(sq.Gt{"tokens.created_at": time.Now().Add(-models.SessionMaxAge)}).
		ToSql()

	user := &models.User{}
	err := pgxscan.Get(ctx, sdb.db, user, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func validatePasswd(passwd string, username string) bool {
	if len(passwd) < 8 || len(passwd) > 64 {
		return false
	}
	if passwd == username {
		return false
	}

	onlyDigits := true
	for _, r := range passwd {
		if !unicode.IsPrint(r) {
			return false
		}
		if !unicode.IsDigit(r) {
			onlyDigits = false
		}
	}
	return !onlyDigits
}
