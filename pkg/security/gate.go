package security

import (
	"fmt"
	"strings"

	"github.com/modernsales/pawnshop/pkg/config"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
)

// MsgWrongSecret is shown when the export secret does not verify.
const MsgWrongSecret = "Mật khẩu không đúng."

// Gate checks the shared secret that unlocks spreadsheet export. Only the
// Argon2id hash is kept in memory.
type Gate struct {
	hash string
}

// NewGate prefers a configured hash and otherwise hashes the plain secret.
func NewGate(export config.ExportConfig, params config.PasswordConfig) (*Gate, error) {
	if hash := strings.TrimSpace(export.SecretHash); hash != "" {
		if _, err := parseHash(hash); err != nil {
			return nil, fmt.Errorf("export secret hash: %w", err)
		}
		return &Gate{hash: hash}, nil
	}
	hash, err := HashSecret(export.Secret, params)
	if err != nil {
		return nil, fmt.Errorf("hash export secret: %w", err)
	}
	return &Gate{hash: hash}, nil
}

// Check returns an unauthorized error unless secret verifies.
func (g *Gate) Check(secret string) error {
	if g == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, MsgWrongSecret)
	}
	ok, err := VerifySecret(secret, g.hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify export secret")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, MsgWrongSecret)
	}
	return nil
}
