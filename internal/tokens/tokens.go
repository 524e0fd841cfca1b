package tokens

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

// DecodeResult is the outcome of decoding a token. Decoding is total: any
// failure (bad signature, malformed token, expired) yields Valid=false,
// never an error the caller has to distinguish.
type DecodeResult struct {
	Valid  bool
	UserID uint
	Email  string
	Role   string
}

func SignAccess(userID uint, email, role string, secret []byte) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func SignRefresh(userID uint, secret []byte) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		Typ: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func DecodeAccess(raw string, secret []byte) DecodeResult {
	var claims AccessClaims
	t, err := jwt.ParseWithClaims(raw, &claims, keyFunc(secret))
	if err != nil || !t.Valid {
		return DecodeResult{}
	}
	id, ok := parseSubject(claims.Subject)
	if !ok {
		return DecodeResult{}
	}
	return DecodeResult{Valid: true, UserID: id, Email: claims.Email, Role: claims.Role}
}

func DecodeRefresh(raw string, secret []byte) DecodeResult {
	var claims RefreshClaims
	t, err := jwt.ParseWithClaims(raw, &claims, keyFunc(secret))
	if err != nil || !t.Valid || claims.Typ != "refresh" {
		return DecodeResult{}
	}
	id, ok := parseSubject(claims.Subject)
	if !ok {
		return DecodeResult{}
	}
	return DecodeResult{Valid: true, UserID: id}
}

func keyFunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}
}

func parseSubject(sub string) (uint, bool) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
