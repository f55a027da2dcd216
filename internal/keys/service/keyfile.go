package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cryptoDomain "github.com/allisson/anonymizer/internal/crypto/domain"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	keysDomain "github.com/allisson/anonymizer/internal/keys/domain"
)

// KeyFileService exports and loads vault key files. When a KMS keeper is
// configured, key material is wrapped before it touches disk.
type KeyFileService struct {
	keeper cryptoDomain.KMSKeeper
}

// NewKeyFileService creates a key file service. keeper may be nil, in which
// case keys are stored base64-encoded but unwrapped.
func NewKeyFileService(keeper cryptoDomain.KMSKeeper) *KeyFileService {
	return &KeyFileService{keeper: keeper}
}

// Export writes the vault key to path with 0600 permissions.
func (k *KeyFileService) Export(ctx context.Context, path string, key []byte) error {
	material := key
	wrapped := false

	if k.keeper != nil {
		var err error
		material, err = k.keeper.Encrypt(ctx, key)
		if err != nil {
			return apperrors.Wrap(err, "failed to wrap vault key")
		}
		wrapped = true
	}

	file := keysDomain.KeyFile{
		Version:   keysDomain.KeyFileVersion,
		Key:       base64.StdEncoding.EncodeToString(material),
		Algorithm: keysDomain.KeyFileAlgorithm,
		Wrapped:   wrapped,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key file")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return apperrors.Wrap(err, "failed to write key file")
	}

	return nil
}

// Load reads a vault key from path, unwrapping it through the KMS keeper when
// the file was exported wrapped.
func (k *KeyFileService) Load(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read key file")
	}

	var file keysDomain.KeyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", keysDomain.ErrKeyFileInvalid, err)
	}

	if file.Version != keysDomain.KeyFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", keysDomain.ErrKeyFileInvalid, file.Version)
	}

	material, err := base64.StdEncoding.DecodeString(file.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keysDomain.ErrKeyFileInvalid, err)
	}

	if file.Wrapped {
		if k.keeper == nil {
			return nil, fmt.Errorf("%w: key file is KMS-wrapped but no keeper is configured", keysDomain.ErrKeyFileInvalid)
		}
		material, err = k.keeper.Decrypt(ctx, material)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unwrap vault key")
		}
	}

	if len(material) != keysDomain.MasterKeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", keysDomain.ErrKeyFileInvalid, keysDomain.MasterKeySize, len(material))
	}

	return material, nil
}
