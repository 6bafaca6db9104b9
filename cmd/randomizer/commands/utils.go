// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Template and library resolution, JSON output and small validators
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harper/prompt-randomizer/internal/config"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// templatePath picks the positional argument over RANDOMIZER_TEMPLATE
func templatePath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.TemplatePath != "" {
		return cfg.TemplatePath, nil
	}
	return "", errors.New("no template given (pass a path or set RANDOMIZER_TEMPLATE)")
}

// libraryDir picks the --library flag over RANDOMIZER_LIBRARY
func libraryDir(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.LibraryDir
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
