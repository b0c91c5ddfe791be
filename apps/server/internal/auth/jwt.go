package auth

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// ErrInvalidToken is surfaced to the client as error{detail="Invalid token"}
// per §7's InvalidToken row.
var ErrInvalidToken = errors.New("invalid token")

var (
	secretOnce sync.Once
	secretVal  []byte
)

// JWTSecretFromEnv resolves the HMAC signing key shared by every backend
// and by the gateway's VerifyBearer calls. A missing JWT_SECRET falls back
// to a process-local random key generated once per process (sync.Once),
// so every caller in the same binary — auth backend and gateway alike —
// agrees on the same secret even though neither is handed the other's
// value explicitly. That fallback does not survive a restart, which is
// fine for local testing but not for a real deployment.
func JWTSecretFromEnv() []byte {
	secretOnce.Do(func() {
		if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
			secretVal = []byte(v)
			return
		}
		secretVal = []byte(mustToken())
	})
	return secretVal
}

func jwtSecretFromEnv() []byte {
	return JWTSecretFromEnv()
}

// IssueToken signs a JWT asserting accountID as the subject and a random
// jti as the revocation handle, grounded on
// original_source/src/utils/jwt.rs's Claims{sub, exp} and
// LarryBui-ThirteenV4's jwt.NewWithClaims(jwt.SigningMethodHS256, ...)
// pattern.
func IssueToken(secret []byte, accountID uint64, ttl time.Duration) (token string, jti string, err error) {
	now := time.Now()
	jti = uuid.NewString()
	claims := jwt.StandardClaims{
		Subject:   strconv.FormatUint(accountID, 10),
		Id:        jti,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// parseClaims verifies signature and expiry and returns the embedded claims.
func parseClaims(secret []byte, tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if err := claims.Valid(); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyBearer is the C8 auth gate: a pure, local, stateless check that
// turns a signed bearer token into a user_id. No intent is accepted before
// this succeeds, and it never consults a revocation store — a logged-out
// token simply expires on its own schedule. Grounded on
// LarryBui-ThirteenV4's jwt.Parse(tokenString, func(token *jwt.Token)
// (interface{}, error) {...}) with an explicit HMAC signing-method check.
func VerifyBearer(secret []byte, tokenString string) (userID string, err error) {
	claims, err := parseClaims(secret, tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
