package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// TestRedactingHandler_SensitiveKeys tests that sensitive keys are masked.
func TestRedactingHandler_SensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{"cookie key is masked", "cookie", "session=abc123", true},
		{"uppercase key is masked", "Cookie", "session=abc123", true},
		{"password key is masked", "password", "hunter2", true},
		{"proxy auth key is masked", "proxy_auth", "user:pw", true},
		{"key containing token is masked", "csrf_token", "abc", true},
		{"lexeme is kept", "lexeme", "подрать", false},
		{"address is kept", "address", "http://search.ruscorpora.ru/search.xml?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, false, false)
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if tt.wantMask {
				if strings.Contains(out, tt.value) {
					t.Errorf("value %q should be masked: %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("expected mask in output: %s", out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("value %q should be kept: %s", tt.value, out)
			}
		})
	}
}

// TestRedactURL tests userinfo removal.
func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"socks5://user:pw@127.0.0.1:1080", "socks5://" + MaskValue + "@127.0.0.1:1080"},
		{"http://alice@proxy:3128/", "http://" + MaskValue + "@proxy:3128/"},
		{"dial http://u:p@h:1: refused", "dial http://" + MaskValue + "@h:1: refused"},
		{"http://search.ruscorpora.ru/search.xml?lex1=подрать&", "http://search.ruscorpora.ru/search.xml?lex1=подрать&"},
		{"mail me at a@b.c", "mail me at a@b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := RedactURL(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestRedactingHandler_Values tests value-based redaction.
func TestRedactingHandler_Values(t *testing.T) {
	t.Parallel()

	t.Run("proxy URL keeps host", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, false, false).Info("using proxy", "proxy", "socks5://user:pw@127.0.0.1:1080")
		out := buf.String()
		if strings.Contains(out, "user:pw") || !strings.Contains(out, "127.0.0.1:1080") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("errors are redacted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := errors.New(`Get "http://bob:pw@proxy/": refused`)
		NewLogger(&buf, false, false).Warn("fetch failed", "error", err)
		if strings.Contains(buf.String(), "bob:pw") {
			t.Errorf("credentials leaked: %s", buf.String())
		}
	})

	t.Run("bearer values are masked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, false, false).Info("header", "value", "Bearer abc.def")
		if strings.Contains(buf.String(), "abc.def") {
			t.Errorf("bearer token leaked: %s", buf.String())
		}
	})

	t.Run("groups and WithAttrs are redacted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, false).With("password", "p1")
		logger.Info("grouped", slog.Group("req", slog.String("cookie", "c1")))
		out := buf.String()
		if strings.Contains(out, "p1") || strings.Contains(out, "c1") {
			t.Errorf("credentials leaked: %s", out)
		}
	})

	t.Run("WithGroup keeps redacting", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, false, false).WithGroup("crawl").Info("x", "token", "t1")
		if strings.Contains(buf.String(), "t1") {
			t.Errorf("credentials leaked: %s", buf.String())
		}
	})
}

// TestNewLogger tests level and format selection.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("info by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false, false)
		logger.Debug("hidden")
		logger.Info("shown")
		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, true, false).Debug("visible")
		if !strings.Contains(buf.String(), "visible") {
			t.Errorf("expected debug output: %s", buf.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, false, true).Info("page fetched", "page", 3, "cookie", "c")
		var m map[string]any
		if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if m["msg"] != "page fetched" || m["cookie"] != MaskValue || m["page"] != float64(3) {
			t.Errorf("unexpected record: %v", m)
		}
	})
}

// TestNewRedactingHandler_NilHandler tests the nil fallback.
func TestNewRedactingHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if NewRedactingHandler(nil).handler == nil {
		t.Error("expected default handler")
	}
}
