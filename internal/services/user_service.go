package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/isdelr/tienda-api/internal/database"
	"github.com/isdelr/tienda-api/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, name, email, password string) (models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	AuthenticateUser(ctx context.Context, email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	db   *database.DB
	cost int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost used for new hashes.
func (s *UserService) WithHashCost(cost int) (*UserService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	s.cost = cost
	return s, nil
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := scanner.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash)
	return user, err
}

func getUserByID(ctx context.Context, q database.Querier, id int64) (models.User, error) {
	row := q.QueryRowContext(ctx, "SELECT id, name, email, password_hash FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := getUserByID(ctx, s.db, id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (models.User, error) {
	var v validator
	v.check(len(password) <= maxPasswordBytes, "password")
	if err := v.err(); err != nil {
		return models.User{}, err
	}

	hashed, err := s.hash(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{Name: name, Email: email}
	err = s.db.QueryRowContext(ctx,
		"INSERT INTO users(name, email, password_hash) VALUES(?, ?, ?) RETURNING id",
		name, email, hashed,
	).Scan(&user.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites the supplied fields. A new password is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	var v validator
	if patch.Name != nil {
		v.check(*patch.Name != "", "nombre")
	}
	if patch.Email != nil {
		v.check(*patch.Email != "", "email")
	}
	if patch.Password != nil {
		v.check(*patch.Password != "" && len(*patch.Password) <= maxPasswordBytes, "password")
	}
	if err := v.err(); err != nil {
		return models.User{}, err
	}

	// Hash outside the transaction; bcrypt is slow on purpose.
	var newHash string
	if patch.Password != nil {
		var err error
		if newHash, err = s.hash(*patch.Password); err != nil {
			return models.User{}, err
		}
	}

	var updated models.User
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		user, err := getUserByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if newHash != "" {
			user.PasswordHash = newHash
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE users SET name = ?, email = ?, password_hash = ? WHERE id = ?",
			user.Name, user.Email, user.PasswordHash, id,
		)
		if err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	updated.PasswordHash = ""
	return updated, nil
}

// DeleteUser removes a user from the database.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	return nil
}

// AuthenticateUser verifies a user's credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials. Emails are not unique, so the
// oldest account with the address is used.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM users WHERE email = ? ORDER BY id LIMIT 1", email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) dummy() []byte {
	s.dummyOnce.Do(func() {
		var err error
		s.dummyHash, err = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cost)
		if err != nil {
			log.Error().Err(err).Int("cost", s.cost).Msg("Failed to prepare dummy password hash")
		}
	})
	return s.dummyHash
}
