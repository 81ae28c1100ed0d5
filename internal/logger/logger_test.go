package logger

import "testing"

func TestNew(t *testing.T) {
	log, err := New("development", "")
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(-1) {
		t.Error("development logger should enable debug")
	}

	log, err = New("production", "warn")
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(0) {
		t.Error("warn level must not enable info")
	}

	if _, err := New("production", "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
