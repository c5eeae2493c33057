package auth

import (
	"context"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, nil)

	token, err := m.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	user, err := m.Verify(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if user != "u1" {
		t.Fatalf("subject = %q, want u1", user)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", time.Hour, nil)
	verifier := NewJWTManager("secret-b", time.Hour, nil)

	token, err := issuer.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Verify(context.Background(), token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, nil)

	token, err := m.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Verify(context.Background(), token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour, nil)

	for _, credential := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(context.Background(), credential); err == nil {
			t.Fatalf("credential %q accepted", credential)
		}
	}
}
