package object

import (
	"errors"
	"testing"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "projects/demo/index.html", want: "projects/demo/index.html"},
		{key: "projects//demo/./app.js", want: "projects/demo/app.js"},
		{key: `projects\demo\app.js`, want: "projects/demo/app.js"},
		{key: "../secret", wantErr: true},
		{key: "projects/../../secret", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "  ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.key)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("CleanKey(%q) expected ErrInvalidKey, got %v", tt.key, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("CleanKey(%q) = %q, %v; want %q", tt.key, got, err, tt.want)
		}
	}
}
