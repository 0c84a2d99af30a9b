package keys

import "testing"

func TestDisplayNameOverride(t *testing.T) {
	if got := DisplayName(Grave); got != "Tilde" {
		t.Errorf("DisplayName(Grave) = %q, want Tilde", got)
	}
}

func TestDisplayNameVerbatim(t *testing.T) {
	for _, k := range All() {
		if k == Grave {
			continue
		}
		if got, want := DisplayName(k), k.String(); got != want {
			t.Errorf("DisplayName(%d) = %q, want %q", k, got, want)
		}
	}
}

func TestDisplayNameUnknown(t *testing.T) {
	if got := DisplayName(Key(999)); got != "Key(999)" {
		t.Errorf("got %q, want Key(999)", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{M, true},
		{Grave, true},
		{F12, true},
		{RightShift, true},
		{LeftShift, false},
		{Key(0), false},
		{Key(999), false},
	}
	for _, tt := range tests {
		if got := Valid(tt.key); got != tt.want {
			t.Errorf("Valid(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, k := range All() {
		got, err := Parse(k.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("Parse(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	got, err := Parse("  pageup ")
	if err != nil {
		t.Fatal(err)
	}
	if got != PageUp {
		t.Errorf("got %v, want PageUp", got)
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("hyper"); err == nil {
		t.Error("expected error for unknown key name")
	}
}

func TestShortcutLabel(t *testing.T) {
	if got := ShortcutLabel(Grave); got != "LeftShift + Tilde" {
		t.Errorf("got %q", got)
	}
	if got := ShortcutLabel(M); got != "LeftShift + M" {
		t.Errorf("got %q", got)
	}
}

func TestDefaultIsBindable(t *testing.T) {
	if !Valid(Default) {
		t.Fatal("default key must be bindable")
	}
}
