package auth

import "testing"

func TestLoginRejectsUnknownUsername(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Login("nobody", "whatever1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolveTokenAcceptsIssuedToken(t *testing.T) {
	m := NewManager()
	accountID, token, err := m.Register("alice_01", "secret12")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resolved, ok := m.ResolveToken(token)
	if !ok {
		t.Fatalf("expected token to resolve")
	}
	if resolved != accountID {
		t.Fatalf("expected account id %d, got %d", accountID, resolved)
	}
}

func TestResolveTokenRejectsGarbage(t *testing.T) {
	m := NewManager()
	if _, ok := m.ResolveToken("not-a-jwt"); ok {
		t.Fatalf("expected garbage token to be rejected")
	}
}
