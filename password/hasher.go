package password

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Algorithm is the closed set of supported hash schemes.
type Algorithm uint8

const (
	// AlgSHA1 is the fast iterated digest scheme (PBKDF2-HMAC-SHA1).
	AlgSHA1 Algorithm = iota
	// AlgSHA512 is the stronger iterated digest scheme (PBKDF2-HMAC-SHA512).
	AlgSHA512
	// AlgBcrypt is the adaptive salted scheme; the configured depth is the
	// bcrypt cost factor and the salt is embedded per call.
	AlgBcrypt
)

const (
	prefixSHA1   = "sha1"
	prefixSHA512 = "sha512"

	saltLength = 16
	minDepth   = 1
)

// Config defines a public type used by goGuard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Algorithm Algorithm
	// Depth is the PBKDF2 iteration count for the digest schemes and the
	// cost factor for bcrypt.
	Depth int
}

// Hasher computes hashes under one configured scheme and verifies hashes
// produced under any supported scheme.
type Hasher struct {
	config Config
}

// New validates the scheme configuration and returns a Hasher. An
// unsupported algorithm, or a bcrypt cost outside the runtime's supported
// range, fails here rather than falling back silently.
func New(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Hasher{config: cfg}, nil
}

// Algorithm reports the scheme used for newly stored hashes.
func (h *Hasher) Algorithm() Algorithm {
	return h.config.Algorithm
}

// Hash computes the stored form of raw under the configured scheme.
func (h *Hasher) Hash(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("password must not be empty")
	}

	switch h.config.Algorithm {
	case AlgSHA1:
		return digestHash(prefixSHA1, sha1.New, sha1.Size, raw, h.config.Depth)
	case AlgSHA512:
		return digestHash(prefixSHA512, sha512.New, sha512.Size, raw, h.config.Depth)
	case AlgBcrypt:
		out, err := bcrypt.GenerateFromPassword([]byte(raw), h.config.Depth)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash: %w", err)
		}
		return string(out), nil
	default:
		return "", errors.New("unsupported algorithm")
	}
}

// Verify checks raw against a stored hash. Dispatch is driven entirely by
// the stored value's self-describing format; the configured scheme is not
// consulted.
func Verify(raw, stored string) (bool, error) {
	switch {
	case strings.HasPrefix(stored, prefixSHA1+"$"):
		return digestVerify(sha1.New, raw, stored)
	case strings.HasPrefix(stored, prefixSHA512+"$"):
		return digestVerify(sha512.New, raw, stored)
	case strings.HasPrefix(stored, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("bcrypt verify: %w", err)
		}
	default:
		return false, errors.New("unrecognized hash format")
	}
}

// Verify checks raw against a stored hash produced under any supported
// scheme.
func (h *Hasher) Verify(raw, stored string) (bool, error) {
	return Verify(raw, stored)
}

// NeedsUpgrade reports whether a stored hash was produced under a scheme or
// depth weaker than the current configuration.
func (h *Hasher) NeedsUpgrade(stored string) (bool, error) {
	alg, depth, err := parseStored(stored)
	if err != nil {
		return false, err
	}
	if alg != h.config.Algorithm {
		return true, nil
	}
	return depth < h.config.Depth, nil
}

func digestHash(prefix string, newHash func() hash.Hash, keyLen int, raw string, depth int) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(raw), salt, depth, keyLen, newHash)

	return fmt.Sprintf(
		"%s$%d$%s$%s",
		prefix,
		depth,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

func digestVerify(newHash func() hash.Hash, raw, stored string) (bool, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 {
		return false, errors.New("invalid digest hash format")
	}

	depth, err := strconv.Atoi(parts[1])
	if err != nil || depth < minDepth {
		return false, errors.New("invalid iteration count")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return false, errors.New("invalid salt encoding")
	}

	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(want) == 0 {
		return false, errors.New("invalid key encoding")
	}

	got := pbkdf2.Key([]byte(raw), salt, depth, len(want), newHash)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func parseStored(stored string) (Algorithm, int, error) {
	switch {
	case strings.HasPrefix(stored, prefixSHA1+"$"), strings.HasPrefix(stored, prefixSHA512+"$"):
		parts := strings.Split(stored, "$")
		if len(parts) != 4 {
			return 0, 0, errors.New("invalid digest hash format")
		}
		depth, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, errors.New("invalid iteration count")
		}
		if parts[0] == prefixSHA1 {
			return AlgSHA1, depth, nil
		}
		return AlgSHA512, depth, nil
	case strings.HasPrefix(stored, "$2"):
		cost, err := bcrypt.Cost([]byte(stored))
		if err != nil {
			return 0, 0, fmt.Errorf("bcrypt cost: %w", err)
		}
		return AlgBcrypt, cost, nil
	default:
		return 0, 0, errors.New("unrecognized hash format")
	}
}

func validateConfig(cfg Config) error {
	switch cfg.Algorithm {
	case AlgSHA1, AlgSHA512:
		if cfg.Depth < minDepth {
			return errors.New("digest depth must be >= 1")
		}
	case AlgBcrypt:
		if cfg.Depth < bcrypt.MinCost || cfg.Depth > bcrypt.MaxCost {
			return fmt.Errorf(
				"bcrypt cost must be between %d and %d",
				bcrypt.MinCost, bcrypt.MaxCost,
			)
		}
	default:
		return errors.New("unsupported algorithm")
	}
	return nil
}
