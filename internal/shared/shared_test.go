package shared

import (
	"strings"
	"testing"
)

func TestFormatSize(t *testing.T) {
	tc := []struct {
		name string
		n    int64
		want string
	}{
		{name: "bytes", n: 512, want: "512 B"},
		{name: "kilobytes", n: 2048, want: "2.0 KB"},
		{name: "megabytes", n: 5 * 1024 * 1024, want: "5.0 MB"},
		{name: "gigabytes", n: 3 * 1024 * 1024 * 1024, want: "3.0 GB"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSize(tt.n)
			if got != tt.want {
				t.Errorf("FormatSize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Run("plain path unchanged", func(t *testing.T) {
		if got := ExpandPath("/tmp/x"); got != "/tmp/x" {
			t.Errorf("ExpandPath() = %v, want /tmp/x", got)
		}
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		got := ExpandPath("~/token.json")
		if strings.HasPrefix(got, "~") {
			t.Errorf("ExpandPath() left tilde in place: %v", got)
		}
		if !strings.HasSuffix(got, "token.json") {
			t.Errorf("ExpandPath() lost the file name: %v", got)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected UUID length 36, got %d", len(a))
	}
}
