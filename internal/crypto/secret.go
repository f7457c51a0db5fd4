package crypto

import (
	"crypto/rand"
	"math/big"

	"github.com/samber/oops"
)

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~"

// Signing secret length bounds, in characters.
const (
	MinSecretLength     = 32
	MaxSecretLength     = 256
	DefaultSecretLength = 48
)

// GenerateSecret returns a random token signing secret of length characters
// drawn uniformly from a URL- and shell-safe alphabet.
func GenerateSecret(length int) (string, error) {
	if length < MinSecretLength || length > MaxSecretLength {
		return "", oops.Code("SECRET_INVALID_LENGTH").With("length", length).
			Errorf("secret length must be between %d and %d", MinSecretLength, MaxSecretLength)
	}

	limit := big.NewInt(int64(len(secretAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", oops.Code("SECRET_RANDOM_FAILED").Wrap(err)
		}
		out[i] = secretAlphabet[n.Int64()]
	}
	return string(out), nil
}
