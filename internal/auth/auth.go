package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken — заголовок Authorization отсутствует или пуст
	ErrNoToken = errors.New("no authorization header")
	// ErrInvalidToken — токен не прошел проверку подписи или истек
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotAdmin — токен валиден, но без административных прав
	ErrNotAdmin = errors.New("admin capability required")
)

var (
	secret []byte
	issuer string
)

// Claims включает стандартные поля и флаг администратора
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin bool `json:"is_admin"`
}

func Init(cfg *Config) {
	secret = []byte(cfg.JWTSecret)
	issuer = cfg.Issuer
}

// VerifyToken проверяет Bearer-токен запроса и возвращает claims
func VerifyToken(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrNoToken
	}

	tokenStr := authHeader
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		tokenStr = strings.TrimSpace(parts[1])
	}
	if tokenStr == "" {
		return nil, ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if issuer != "" && claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAdmin проверяет токен и требует флаг администратора.
// Возвращает идентификатор вызывающего (subject).
func VerifyAdmin(r *http.Request) (string, error) {
	claims, err := VerifyToken(r)
	if err != nil {
		return "", err
	}
	if !claims.IsAdmin {
		return "", ErrNotAdmin
	}

	userID := claims.Subject
	if userID == "" {
		userID = "unknown"
	}
	return userID, nil
}
