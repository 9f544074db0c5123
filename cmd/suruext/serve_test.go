package main

import (
	"testing"

	"github.com/nao1215/suruext/internal/config"
)

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		addr string
		want string
	}{
		{name: "host and port", addr: "127.0.0.1:5001", want: "http://127.0.0.1:5001"},
		{name: "port only", addr: ":8080", want: "http://localhost:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := baseURL(tt.addr); got != tt.want {
				t.Errorf("baseURL(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}

func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("listen defaults to the creator address", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listen")
		if flag == nil {
			t.Fatal("expected listen flag")
		}
		if flag.DefValue != config.DefaultListenAddress {
			t.Errorf("default = %q, want %q", flag.DefValue, config.DefaultListenAddress)
		}
	})

	t.Run("env file defaults to .env", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("env-file")
		if flag == nil {
			t.Fatal("expected env-file flag")
		}
		if flag.DefValue != config.DefaultEnvFile {
			t.Errorf("default = %q, want %q", flag.DefValue, config.DefaultEnvFile)
		}
	})
}
