package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSecureHandler_MasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "bot password is masked", key: "password", value: "hunter2", wantMask: true},
		{name: "login token is masked", key: "lgtoken", value: "abc", wantMask: true},
		{name: "csrf token is masked", key: "csrftoken", value: "abc", wantMask: true},
		{name: "uppercase cookie key is masked", key: "Cookie", value: "a=b", wantMask: true},
		{name: "key containing token is masked", key: "edit_token", value: "xyz", wantMask: true},
		{name: "lexeme id is kept", key: "lexeme", value: "L1234", wantMask: false},
		{name: "sparql endpoint is kept", key: "url", value: "https://query.wikidata.org/sparql", wantMask: false},
		{name: "suru id is kept", key: "suru_id", value: "1234", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewSecureLogger(&buf, true).Info("msg", tt.key, tt.value)
			out := buf.String()

			if tt.wantMask {
				if strings.Contains(out, tt.value) || !strings.Contains(out, MaskValue) {
					t.Errorf("value %q not masked: %s", tt.value, out)
				}
				return
			}
			if !strings.Contains(out, tt.value) {
				t.Errorf("value %q missing from output: %s", tt.value, out)
			}
		})
	}
}

func TestSecureHandler_MasksSensitiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "mediawiki csrf token", value: "0123456789abcdef0123456789abcdef+\\", want: true},
		{name: "anonymous token is not a secret pattern", value: "+\\", want: false},
		{name: "bearer header", value: "Bearer abc.def", want: true},
		{name: "session cookie", value: "wikidatawikiSession=abc; path=/", want: true},
		{name: "suru id", value: "7107788c441b76dfdb12e2eb7ab5a1a2", want: false},
		{name: "swedish lemma", value: "hund", want: false},
		{name: "item id", value: "Q144", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isSensitiveValue(tt.value); got != tt.want {
				t.Errorf("isSensitiveValue(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestSecureHandler_LevelFollowsVerbose(t *testing.T) {
	t.Parallel()

	t.Run("quiet logger drops debug and info", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)
		logger.Debug("debug line")
		logger.Info("info line")
		logger.Warn("warn line")

		out := buf.String()
		if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
			t.Errorf("quiet logger emitted low level records: %s", out)
		}
		if !strings.Contains(out, "warn line") {
			t.Errorf("quiet logger dropped warning: %s", out)
		}
	})

	t.Run("verbose logger emits debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		NewSecureLogger(&buf, true).Debug("debug line")
		if !strings.Contains(buf.String(), "debug line") {
			t.Errorf("verbose logger dropped debug: %s", buf.String())
		}
	})
}

func TestSecureHandler_GroupsAndWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewSecureLogger(&buf, true).With("lgpassword", "s3cret")
	logger.Info("login", slog.Group("request", slog.String("lgtoken", "tok"), slog.String("action", "login")))

	out := buf.String()
	if strings.Contains(out, "s3cret") || strings.Contains(out, "=tok") {
		t.Errorf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, "action=login") {
		t.Errorf("plain group attribute missing: %s", out)
	}
}

func TestNewSecureJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSecureJSONLogger(&buf, true).Info("created", "lexeme", "L42", "token", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if entry["lexeme"] != "L42" {
		t.Errorf("lexeme = %v, want L42", entry["lexeme"])
	}
	if entry["token"] != MaskValue {
		t.Errorf("token = %v, want %s", entry["token"], MaskValue)
	}
}

func TestComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Component(NewSecureLogger(&buf, true), "sparql").Info("query")
	if !strings.Contains(buf.String(), "component=sparql") {
		t.Errorf("component attribute missing: %s", buf.String())
	}

	if Component(nil, "x") == nil {
		t.Error("Component(nil) returned nil")
	}
}

func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	if NewSecureHandler(nil).handler == nil {
		t.Error("nil handler was not replaced by the default")
	}
}
