package app

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/nordstack/tokend/pkg/cryptox"
	"github.com/nordstack/tokend/pkg/jwtx"
)

// SigningKeys bundles the signing side and the verification side of the
// service's key material.
type SigningKeys struct {
	Signer   jwtx.Signer
	KeySet   *jwtx.KeySet
	Verifier jwtx.Verifier
}

// InitSigningKeys loads or generates the RS256 signing key.
//
// Key sources, in order:
//   - TOKEND_KEY_FILE: a PEM private key on disk. If the file is not valid
//     PEM it is treated as an encrypted key and decrypted with the master
//     key (TOKEND_MASTER_KEY_PATH / TOKEND_MASTER_KEY). Tokens survive
//     restarts in this mode.
//   - otherwise an ephemeral key is generated on startup and all previously
//     minted tokens become unverifiable.
//
// The kid is derived from the key material so the same key file always
// publishes the same JWKS entry.
func InitSigningKeys(cfg Config, logger *slog.Logger) (*SigningKeys, error) {
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	}

	var pemKey []byte

	switch {
	case cfg.KeyFile != "":
		data, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file: %w", err)
		}

		if !bytes.Contains(data, []byte("-----BEGIN")) {
			data, err = cryptox.DecryptPrivateKey(data)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt key file: %w", err)
			}
			logger.Info("signing key decrypted", "path", cfg.KeyFile)
		}

		pemKey = data
		logger.Info("persistent signing key loaded - tokens will survive restarts",
			"path", cfg.KeyFile,
		)

	default:
		key, err := cryptox.GenerateRSAKey(cfg.RSABits)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		pemKey = key

		logger.Info("generated ephemeral signing key", "bits", cfg.RSABits)
		logger.Warn("all previously minted tokens are now invalid")
	}

	signer, err := jwtx.NewSignerRS256(deriveKID(pemKey), pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to construct signer: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return nil, fmt.Errorf("signing key failed validation: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("failed to publish verification key: %w", err)
	}

	logger.Info("signing key ready", "kid", signer.KID(), "alg", signer.Alg())

	return &SigningKeys{
		Signer:   signer,
		KeySet:   keys,
		Verifier: jwtx.NewVerifierRS256(keys),
	}, nil
}

// deriveKID hashes the key material into a short stable identifier.
func deriveKID(pemKey []byte) string {
	sum := sha256.Sum256(pemKey)
	return hex.EncodeToString(sum[:8])
}
