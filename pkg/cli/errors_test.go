package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		err  *ConfigError
		want string
	}{
		{NewConfigError("cache.cold.path", "must not be empty"), "config error in cache.cold.path: must not be empty"},
		{NewConfigError("", "file not found"), "config error: file not found"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	inner := errors.New("listen tcp: address in use")
	err := NewCommandError("run", inner)

	if !errors.Is(err, inner) {
		t.Error("CommandError does not unwrap to its cause")
	}
	if err.Error() != "command run failed: listen tcp: address in use" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", NewConfigError("server", "bad"), ExitConfig},
		{"wrapped config", fmt.Errorf("loading: %w", NewConfigError("", "bad")), ExitConfig},
		{"command", NewCommandError("run", errors.New("boom")), ExitError},
		{"plain", errors.New("boom"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
