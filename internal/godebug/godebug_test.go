package godebug

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		env, key, want string
	}{
		{"", "flatedebug", ""},
		{"flatedebug=1", "flatedebug", "1"},
		{"x=2,flatedebug=1", "flatedebug", "1"},
		{"flatedebug=1,flatedebug=0", "flatedebug", "0"},
		{"flatedebug=1#comment", "flatedebug", "1"},
		{"flatedebugx=1", "flatedebug", ""},
		{"flatedebug", "flatedebug", ""},
	}
	for _, tt := range tests {
		if got := lookup(tt.env, tt.key); got != tt.want {
			t.Errorf("lookup(%q, %q) = %q, want %q", tt.env, tt.key, got, tt.want)
		}
	}
}

func TestEnabled(t *testing.T) {
	t.Setenv("GODEBUG", "flatedebug=1")
	if !Enabled("flatedebug") {
		t.Fatal("expected flatedebug to be enabled")
	}
	t.Setenv("GODEBUG", "flatedebug=0")
	if Enabled("flatedebug") {
		t.Fatal("expected flatedebug to be disabled")
	}
}
