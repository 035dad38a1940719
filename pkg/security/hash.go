package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modernsales/pawnshop/pkg/config"
	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned for anything that is not a PHC-style argon2id string.
var ErrMalformedHash = errors.New("malformed argon2id hash")

const hashPrefix = "argon2id"

type argonCost struct {
	memory  uint32
	passes  uint32
	threads uint8
}

// storedHash is the decoded form of "$argon2id$v=19$m=..,t=..,p=..$salt$key".
type storedHash struct {
	cost argonCost
	salt []byte
	key  []byte
}

func (h storedHash) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		hashPrefix, argon2.Version, h.cost.memory, h.cost.passes, h.cost.threads,
		enc.EncodeToString(h.salt), enc.EncodeToString(h.key))
}

func (h storedHash) matches(secret string) bool {
	derived := argon2.IDKey([]byte(secret), h.salt, h.cost.passes, h.cost.memory, h.cost.threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(h.key, derived) == 1
}

// HashSecret derives a salted argon2id hash of secret using the configured cost.
func HashSecret(secret string, cfg config.PasswordConfig) (string, error) {
	if secret == "" {
		return "", errors.New("secret cannot be empty")
	}
	salt := make([]byte, bounded(cfg.ArgonSaltLen, 8, 64))
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	h := storedHash{
		cost: argonCost{
			memory:  uint32(bounded(cfg.ArgonMemoryKB, 8, 512*1024)),
			passes:  uint32(bounded(cfg.ArgonTime, 1, 10)),
			threads: uint8(bounded(cfg.ArgonParallelism, 1, 255)),
		},
		salt: salt,
	}
	h.key = argon2.IDKey([]byte(secret), h.salt, h.cost.passes, h.cost.memory, h.cost.threads,
		uint32(bounded(cfg.ArgonKeyLen, 16, 64)))
	return h.String(), nil
}

// VerifySecret reports whether secret produces encoded. A malformed encoded
// value is an error, a mismatch is not.
func VerifySecret(secret, encoded string) (bool, error) {
	h, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	return h.matches(secret), nil
}

func parseHash(encoded string) (storedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != hashPrefix {
		return storedHash{}, ErrMalformedHash
	}
	cost, err := parseCost(parts[3])
	if err != nil {
		return storedHash{}, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return storedHash{}, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return storedHash{}, ErrMalformedHash
	}
	return storedHash{cost: cost, salt: salt, key: key}, nil
}

func parseCost(field string) (argonCost, error) {
	var cost argonCost
	for _, pair := range strings.Split(field, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return argonCost{}, ErrMalformedHash
		}
		bits := 32
		if name == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(raw, 10, bits)
		if err != nil {
			return argonCost{}, ErrMalformedHash
		}
		switch name {
		case "m":
			cost.memory = uint32(v)
		case "t":
			cost.passes = uint32(v)
		case "p":
			cost.threads = uint8(v)
		}
	}
	if cost.memory == 0 || cost.passes == 0 || cost.threads == 0 {
		return argonCost{}, ErrMalformedHash
	}
	return cost, nil
}

func bounded(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
