package auth

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	m := NewManager()

	accountID, token, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if accountID == 0 {
		t.Fatalf("expected account id")
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	resolvedID, ok := m.ResolveToken(token)
	if !ok {
		t.Fatalf("expected valid token")
	}
	if resolvedID != accountID {
		t.Fatalf("expected same account id, got %d and %d", accountID, resolvedID)
	}

	loginID, loginToken, err := m.Login("alice_01", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginID != accountID {
		t.Fatalf("expected same account id after login")
	}
	if loginToken == "" {
		t.Fatalf("expected login token")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("alice_01", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Register("Alice_01", "secret12"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("alice_01", "secret12"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, _, err := m.Login("alice_01", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	m := NewManager()
	_, token, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	m.Logout(token)
	if _, ok := m.ResolveToken(token); ok {
		t.Fatalf("expected logged-out token to be rejected by ResolveToken")
	}
	if _, err := VerifyBearer(m.secret, token); err != nil {
		t.Fatalf("expected VerifyBearer to still accept the unexpired token: %v", err)
	}
}

// TestLogoutRevocationIsPerJTI covers the revocation set's scope: logging
// out one token must not poison a sibling token for the same account,
// since each IssueToken call mints its own jti.
func TestLogoutRevocationIsPerJTI(t *testing.T) {
	m := NewManager()
	accountID, firstToken, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, secondToken, err := m.Login("alice_01", "secret12")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if firstToken == secondToken {
		t.Fatalf("expected distinct tokens (distinct jti) from register and login")
	}

	m.Logout(firstToken)

	if _, ok := m.ResolveToken(firstToken); ok {
		t.Fatal("expected the logged-out token to be rejected")
	}
	resolvedID, ok := m.ResolveToken(secondToken)
	if !ok {
		t.Fatal("expected the sibling token to remain valid after the other was revoked")
	}
	if resolvedID != accountID {
		t.Fatalf("expected account id %d, got %d", accountID, resolvedID)
	}
}
