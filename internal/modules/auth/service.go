package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a bad email/password pair. Callers
// must not distinguish an unknown user from a wrong password.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// User is an authenticated account
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Service manages user accounts and bearer tokens
type Service struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

// NewService creates an auth service
func NewService(db *sql.DB, secret string, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

// CreateUser registers a new account with a bcrypt-hashed password
func (s *Service) CreateUser(email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, fmt.Errorf("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO users (email, hashed_password) VALUES (?, ?)`,
		email, string(hash),
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	id, _ := res.LastInsertId()
	return User{ID: id, Email: email}, nil
}

// UserExists reports whether an account with this email exists
func (s *Service) UserExists(email string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query user: %w", err)
	}
	return count > 0, nil
}

// Authenticate verifies an email/password pair
func (s *Service) Authenticate(email, password string) (User, error) {
	var (
		user User
		hash string
	)
	err := s.db.QueryRow(
		`SELECT id, email, hashed_password FROM users WHERE email = ? AND is_active = 1`,
		email,
	).Scan(&user.ID, &user.Email, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken creates a signed bearer token for a user
func (s *Service) IssueToken(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a bearer token and returns the subject email
func (s *Service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.Subject, nil
}
