package tui

import (
	"strings"
	"testing"
)

func TestProfileFor(t *testing.T) {
	tests := []struct {
		user string
		want string
	}{
		{"legolas", "legolas"},
		{"  gimli ", "gimli"},
		{"frodo.baggins", "frodobaggins"},
		{"sam_wise-2", "sam_wise-2"},
		{"", guestProfile},
		{"../../", guestProfile},
		{strings.Repeat("a", 40), strings.Repeat("a", 32)},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := ProfileFor(tt.user); got != tt.want {
				t.Errorf("ProfileFor(%q) = %q, want %q", tt.user, got, tt.want)
			}
		})
	}
}

func TestProfileClaim(t *testing.T) {
	s := &SSHServer{active: make(map[string]string)}

	if _, ok := s.claim("legolas", "10.0.0.1:5000"); !ok {
		t.Fatal("first claim refused")
	}
	holder, ok := s.claim("legolas", "10.0.0.2:6000")
	if ok {
		t.Fatal("second session got the same profile")
	}
	if holder != "10.0.0.1:5000" {
		t.Errorf("holder = %q", holder)
	}
	if _, ok := s.claim("gimli", "10.0.0.2:6000"); !ok {
		t.Error("other profile refused")
	}

	s.release("legolas")
	if _, ok := s.claim("legolas", "10.0.0.2:6000"); !ok {
		t.Error("claim refused after release")
	}
}
