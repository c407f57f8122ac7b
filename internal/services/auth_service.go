package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService interface {
	HashPassword(plain string) (string, error)
	CheckPassword(hash, plain string) bool
	NewAccessToken(userID int) (string, time.Time, error)
	ParseAccessToken(token string) (*Claims, error)
}

type authService struct {
	secret    []byte
	accessTTL time.Duration
	cost      int
	now       func() time.Time
}

func NewAuthService(secret string, accessTTL time.Duration) AuthService {
	return newAuthService(secret, accessTTL, bcrypt.DefaultCost)
}

func newAuthService(secret string, accessTTL time.Duration, cost int) *authService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &authService{secret: []byte(secret), accessTTL: accessTTL, cost: cost, now: time.Now}
}

func (s *authService) HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (s *authService) CheckPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (s *authService) NewAccessToken(userID int) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *authService) ParseAccessToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// принимаем только HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithLeeway(2*time.Minute), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
