package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("u1", "ann")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u1" || u.Username != "ann" {
		t.Fatalf("user = %+v", u)
	}

	if _, err := NewUser("u1", ""); !errors.Is(err, ErrUsernameEmpty) {
		t.Fatalf("err = %v, want ErrUsernameEmpty", err)
	}
	if _, err := NewUser("u1", strings.Repeat("x", MaxUsernameLen+1)); !errors.Is(err, ErrUsernameTooLong) {
		t.Fatalf("err = %v, want ErrUsernameTooLong", err)
	}
}
