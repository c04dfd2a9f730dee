package cli

import (
	"testing"
)

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"comment show without id", []string{"comment", "show"}},
		{"comment show non-numeric id", []string{"comment", "show", "abc"}},
		{"comment show zero id", []string{"comment", "show", "0"}},
		{"comment add without text", []string{"comment", "add"}},
		{"comment add blank text", []string{"comment", "add", "   "}},
		{"comment edit without text", []string{"comment", "edit", "1"}},
		{"comment edit non-numeric id", []string{"comment", "edit", "x", "text"}},
		{"comment rm without id", []string{"comment", "rm"}},
		{"comment rm two ids", []string{"comment", "rm", "1", "2"}},
		{"history show without id", []string{"history", "show"}},
		{"history show negative id", []string{"history", "show", "-3"}},
		{"users update without flags", []string{"users", "update"}},
		{"version with args", []string{"version", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Point at a closed port so a validation miss fails fast instead of hitting a real server.
			t.Setenv("BLOGGU_SERVER_URL", "http://127.0.0.1:1")
			t.Setenv("HOME", t.TempDir())

			_, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID("comment", tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseID(%q) err = %v, wantErr = %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseID(%q) = %d, want %d", tt.arg, got, tt.want)
			}
		})
	}
}
