package binlog

import "testing"

func TestIsGTIDModeOn(t *testing.T) {
	cases := []struct {
		mode string
		want bool
	}{
		{"ON", true},
		{"ON_PERMISSIVE", true},
		{"ON_MANDATORY", true},
		{"OFF", false},
		{"OFF_PERMISSIVE", false},
		{"", false},
	}
	for _, c := range cases {
		if got := isGTIDModeOn(c.mode); got != c.want {
			t.Errorf("isGTIDModeOn(%q): got %v want %v", c.mode, got, c.want)
		}
	}
}

func TestOpenStream_invalidConfig(t *testing.T) {
	if _, err := OpenStream(&Config{}); err == nil {
		t.Fatal("want error for missing Host, got nil")
	}
}
