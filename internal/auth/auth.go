// Package auth locates and validates the Gemini API credential.
package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".gemlookup"
	credentialFile = "credentials.gpg"
)

// APIKeyEnvVars are checked in order for the Gemini API key. API_KEY and
// VITE_API_KEY are the names the browser build injected.
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "API_KEY", "VITE_API_KEY"}

// ErrNoAPIKey is returned by GetAPIKey when no source holds a key.
var ErrNoAPIKey = errors.New("API key not found")

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY, API_KEY, VITE_API_KEY environment variables (trimmed)
//  2. GPG-encrypted file at ~/.gemlookup/credentials.gpg
func GetAPIKey() (string, error) {
	if key, name := KeyFromEnv(); key != "" {
		log.Debug().Str("envVar", name).Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}

	log.Debug().Err(err).Msg("No API key source available")
	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: "Set GEMINI_API_KEY or store it in ~/" + credentialDir + "/" + credentialFile,
		Err:     ErrNoAPIKey,
	}
}

// KeyFromEnv returns the first non-blank key among APIKeyEnvVars, trimmed,
// and the variable it came from. Both are "" when none is set.
func KeyFromEnv() (key, envVar string) {
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name
		}
	}
	return "", ""
}

// getFromGPG decrypts the API key from the GPG-encrypted credentials file.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	args := []string{"--decrypt", "--quiet"}

	if passphrasePath, ok := getPassphrasePath(); ok {
		fi, statErr := os.Stat(passphrasePath)
		if statErr == nil {
			// Passphrase file must be owner-only.
			mode := fi.Mode().Perm()
			if mode&0077 != 0 {
				log.Warn().
					Str("passphrase_file", passphrasePath).
					Str("permissions", fmt.Sprintf("%04o", mode)).
					Msg("Passphrase file has insecure permissions (should be 0600); skipping")
			} else {
				args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
			}
		}
	}

	args = append(args, credPath)
	output, err := exec.Command("gpg", args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, credentialFile), nil
}

// getPassphrasePath looks for .gpg-passphrase next to the credentials file.
func getPassphrasePath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(home, credentialDir, ".gpg-passphrase")
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
