package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	tokenBytes      = 32
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// Manager provides in-memory account management for single-binary
// deployment. It can be swapped to persistent storage later without
// changing gateway contracts. Token issuance/verification has moved to
// signed JWTs (see jwt.go); Manager only tracks accounts and a
// process-local revocation set for Logout.
type Manager struct {
	mu sync.Mutex

	secret        []byte
	tokenTTL      time.Duration
	nextAccountID uint64
	accountsByID  map[uint64]accountRecord // account -> profile
	accountsByKey map[string]uint64        // normalized username -> account
	revokedJTI    map[string]struct{}
}

type accountRecord struct {
	AccountID     uint64
	Username      string
	PasswordHash  []byte
	LastLoginTime time.Time
}

func NewManager() *Manager {
	return &Manager{
		secret:        jwtSecretFromEnv(),
		tokenTTL:      defaultTokenTTL,
		nextAccountID: 100000, // start from a readable non-trivial range
		accountsByID:  make(map[uint64]accountRecord),
		accountsByKey: make(map[string]uint64),
		revokedJTI:    make(map[string]struct{}),
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if !usernamePattern.MatchString(trimmed) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func parseAccountID(subject string) (uint64, error) {
	return strconv.ParseUint(subject, 10, 64)
}

// Register creates a new account and returns a signed bearer token.
func (m *Manager) Register(username, password string) (accountID uint64, token string, err error) {
	if err = validateUsername(username); err != nil {
		return 0, "", err
	}
	if err = validatePassword(password); err != nil {
		return 0, "", err
	}

	normalized := normalizeUsername(username)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accountsByKey[normalized]; exists {
		return 0, "", ErrUsernameTaken
	}

	m.nextAccountID++
	accountID = m.nextAccountID
	now := time.Now()
	m.accountsByID[accountID] = accountRecord{
		AccountID:     accountID,
		Username:      normalized,
		PasswordHash:  passwordHash,
		LastLoginTime: now,
	}
	m.accountsByKey[normalized] = accountID

	token, _, err = IssueToken(m.secret, accountID, m.tokenTTL)
	if err != nil {
		return 0, "", err
	}
	return accountID, token, nil
}

// Login validates account credentials and returns a fresh bearer token.
func (m *Manager) Login(username, password string) (accountID uint64, token string, err error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return 0, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	accountID, exists := m.accountsByKey[normalized]
	if !exists {
		return 0, "", ErrInvalidCredentials
	}

	profile := m.accountsByID[accountID]
	if len(profile.PasswordHash) == 0 {
		return 0, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(password)) != nil {
		return 0, "", ErrInvalidCredentials
	}

	profile.LastLoginTime = time.Now()
	m.accountsByID[accountID] = profile

	token, _, err = IssueToken(m.secret, accountID, m.tokenTTL)
	if err != nil {
		return 0, "", err
	}
	return accountID, token, nil
}

// Logout revokes token's jti so ResolveToken stops accepting it; the WS
// gate's VerifyBearer never consults this and still honors the token
// until it expires naturally.
func (m *Manager) Logout(token string) {
	claims, err := parseClaims(m.secret, token)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedJTI[claims.Id] = struct{}{}
}

// ResolveToken verifies token and checks it against the revocation set.
func (m *Manager) ResolveToken(token string) (accountID uint64, ok bool) {
	claims, err := parseClaims(m.secret, token)
	if err != nil {
		return 0, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, revoked := m.revokedJTI[claims.Id]; revoked {
		return 0, false
	}

	id, err := parseAccountID(claims.Subject)
	if err != nil {
		return 0, false
	}
	if _, exists := m.accountsByID[id]; !exists {
		return 0, false
	}
	return id, true
}

func (m *Manager) Close() error { return nil }

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
