package provider

import (
	"fmt"
	"os"
	"strings"
)

// LoadCredential reads a plaintext secret file. A missing or blank file
// yields ErrMissingCredential.
func LoadCredential(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("no secret file configured: %w", ErrMissingCredential)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, ErrMissingCredential)
		}
		return "", fmt.Errorf("failed to read secret file %s: %w", path, err)
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s is empty: %w", path, ErrMissingCredential)
	}
	return secret, nil
}
