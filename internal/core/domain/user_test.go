package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "ADMIN", want: RoleAdmin},
		{in: " USER ", want: RoleUser},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
		{in: "SUPERUSER", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Fatalf("ParseRole(%q): expected ErrInvalidRole, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Role: RoleUser}
	if !u.HasRole(RoleAdmin, RoleUser) {
		t.Fatalf("expected USER to match")
	}
	if u.HasRole(RoleAdmin) {
		t.Fatalf("USER must not match ADMIN")
	}

	legacy := &User{Role: Role("ADMN")}
	if legacy.HasRole(RoleAdmin) {
		t.Fatalf("misspelled stored role must not match")
	}

	var nilUser *User
	if nilUser.HasRole(RoleAdmin) {
		t.Fatalf("nil user has no role")
	}
}
