package encstore

import (
	"errors"
	"fmt"
)

// MinSecretLength is the minimum secret length in runes.
const MinSecretLength = 10

// ErrInvalidSecret matches every *InvalidSecretError via errors.Is.
var ErrInvalidSecret = errors.New("encstore: invalid secret")

type InvalidSecretError struct {
	Length int // runes in the rejected secret
}

func (e *InvalidSecretError) Error() string {
	return fmt.Sprintf("encstore: secret must have at least %d characters, got %d", MinSecretLength, e.Length)
}

func (e *InvalidSecretError) Is(target error) bool { return target == ErrInvalidSecret }
