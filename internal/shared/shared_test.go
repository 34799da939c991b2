package shared

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		name  string
		level string
		want  log.Level
	}{
		{name: "debug", level: "debug", want: log.DebugLevel},
		{name: "mixed case with spaces", level: "  WARN ", want: log.WarnLevel},
		{name: "unknown falls back to info", level: "verbose", want: log.InfoLevel},
		{name: "empty falls back to info", level: "", want: log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLogLevel(tt.level); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/.shelf/storage.db"); got != filepath.Join(home, ".shelf/storage.db") {
		t.Errorf("unexpected expansion: %s", got)
	}
	if got := ExpandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("absolute paths should be unchanged, got %s", got)
	}
	if got := ExpandPath("~user/path"); got != "~user/path" {
		t.Errorf("~user paths should be unchanged, got %s", got)
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shelf.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Info("hello", "key", "value")

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello") {
		t.Errorf("expected log line in file, got %q", content)
	}
}

func TestErrors(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		err := error(&APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"})
		if !errors.Is(err, ErrAPIRequest) {
			t.Error("APIError should match ErrAPIRequest")
		}
		if err.Error() != "Invalid credentials" {
			t.Errorf("unexpected message %q", err.Error())
		}
		if (&APIError{Status: 500}).Error() != DefaultAPIErrorMessage {
			t.Error("empty message should fall back to the default")
		}
	})

	t.Run("NetworkError", func(t *testing.T) {
		err := error(&NetworkError{Err: context.Canceled})
		if !errors.Is(err, ErrNetwork) {
			t.Error("NetworkError should match ErrNetwork")
		}
		if !errors.Is(err, context.Canceled) {
			t.Error("NetworkError should unwrap to its cause")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := error(&ValidationError{Fields: map[string]string{
			"password": "Password is required",
			"email":    "Email is required",
		}})
		if !errors.Is(err, ErrValidation) {
			t.Error("ValidationError should match ErrValidation")
		}
		want := "validation failed: email: Email is required; password: Password is required"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("ErrorMessage", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), &APIError{Message: "Email already registered"})
		if got := ErrorMessage(wrapped); got != "Email already registered" {
			t.Errorf("expected API message, got %q", got)
		}
		if got := ErrorMessage(errors.New("boom")); got != "boom" {
			t.Errorf("expected plain message, got %q", got)
		}
	})
}

func TestBookPageURL(t *testing.T) {
	if got := BookPageURL("https://books.google.com/books?id=%s", "abc"); got != "https://books.google.com/books?id=abc" {
		t.Errorf("unexpected url %s", got)
	}
	if got := BookPageURL("https://example.com/b/", "abc"); got != "https://example.com/b/abc" {
		t.Errorf("unexpected url %s", got)
	}
}

func TestOpenBrowser(t *testing.T) {
	t.Run("rejects non web addresses", func(t *testing.T) {
		for _, target := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "https://"} {
			if err := OpenBrowser(target); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("OpenBrowser(%q) = %v, want ErrInvalidInput", target, err)
			}
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		orig := getRuntime
		getRuntime = func() string { return "plan9" }
		defer func() { getRuntime = orig }()

		if err := OpenBrowser("https://example.com"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}
