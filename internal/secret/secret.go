// Package secret resolves the encstore secret for the CLI: environment
// first, then the OS keyring, then an interactive prompt.
package secret

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	EnvVar      = "ENCSTORE_SECRET"
	serviceName = "encstore"
)

// ErrNoSecret is returned when no source produced a secret.
var ErrNoSecret = errors.New("secret: no secret available (set " + EnvVar + ", save one to the keyring, or run in a terminal)")

// Source names where a secret came from.
type Source string

const (
	FromEnv     Source = "env"
	FromKeyring Source = "keyring"
	FromPrompt  Source = "prompt"
)

// Resolver looks a secret up. Zero fields use the process defaults.
type Resolver struct {
	Account string                              // keyring account
	Getenv  func(string) string                 // nil => os.Getenv
	Prompt  func(prompt string) (string, error) // nil => ReadTerminal
}

func (r Resolver) Resolve() (string, Source, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if s := getenv(EnvVar); s != "" {
		return s, FromEnv, nil
	}

	// a missing entry or an unavailable keyring falls through to the prompt
	if r.Account != "" {
		if s, err := Load(r.Account); err == nil && s != "" {
			return s, FromKeyring, nil
		}
	}

	prompt := r.Prompt
	if prompt == nil {
		prompt = ReadTerminal
	}
	s, err := prompt("Enter secret: ")
	if err != nil {
		return "", "", err
	}
	if s == "" {
		return "", "", ErrNoSecret
	}
	return s, FromPrompt, nil
}

// Save stores a secret in the OS keyring
func Save(account, secret string) error {
	return keyring.Set(serviceName, account, secret)
}

// Load retrieves a secret from the OS keyring
func Load(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Delete removes a secret from the OS keyring
func Delete(account string) error {
	return keyring.Delete(serviceName, account)
}

// Has checks if a secret is stored in the keyring
func Has(account string) bool {
	_, err := keyring.Get(serviceName, account)
	return err == nil
}

// ReadTerminal reads a secret from the terminal without echoing
func ReadTerminal(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoSecret
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return string(b), nil
}
