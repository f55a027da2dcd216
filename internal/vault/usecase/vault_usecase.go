package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/anonymizer/internal/crypto/domain"
	cryptoService "github.com/allisson/anonymizer/internal/crypto/service"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	keysDomain "github.com/allisson/anonymizer/internal/keys/domain"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
	vaultService "github.com/allisson/anonymizer/internal/vault/service"
)

const saltSize = 16

// vaultUseCase implements VaultUseCase on top of a MappingRepository.
//
// Record values are sealed with an AEAD cipher whose key is derived from a
// password (via vault metadata salt) or supplied from an exported key file.
// The record's forward hash key doubles as associated data so a ciphertext
// cannot be replayed under a different fingerprint.
type vaultUseCase struct {
	repo        MappingRepository
	schedule    *keysService.Schedule
	aeadManager cryptoService.AEADManager
	passwords   vaultService.PasswordService

	aead      cryptoService.AEAD
	algorithm cryptoDomain.Algorithm
}

// NewVaultUseCase creates a new vault use case instance.
func NewVaultUseCase(
	repo MappingRepository,
	schedule *keysService.Schedule,
	aeadManager cryptoService.AEADManager,
	passwords vaultService.PasswordService,
) VaultUseCase {
	return &vaultUseCase{
		repo:        repo,
		schedule:    schedule,
		aeadManager: aeadManager,
		passwords:   passwords,
		algorithm:   cryptoDomain.AESGCM,
	}
}

// OpenWithPassword opens (or initializes) a password-protected vault.
func (u *vaultUseCase) OpenWithPassword(ctx context.Context, password []byte) error {
	meta, err := u.repo.GetMeta(ctx)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
		}
		meta, err = u.initialize(ctx, password)
		if err != nil {
			return err
		}
	} else {
		if err := checkMeta(meta); err != nil {
			return err
		}
		if meta.PasswordHash == "" {
			return fmt.Errorf("%w: vault was created with a key file, not a password", vaultDomain.ErrVaultAuth)
		}
		if !u.passwords.ComparePassword(password, meta.PasswordHash) {
			return vaultDomain.ErrVaultAuth
		}
	}

	key := keysService.DeriveVaultKey(password, meta.Salt, meta.KDFIterations)
	defer cryptoDomain.Zero(key)
	return u.setCipher(key, cryptoDomain.Algorithm(meta.Algorithm))
}

// OpenWithKey opens (or initializes) a vault using raw key material.
func (u *vaultUseCase) OpenWithKey(ctx context.Context, key []byte) error {
	meta, err := u.repo.GetMeta(ctx)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
		}
		meta, err = u.initialize(ctx, nil)
		if err != nil {
			return err
		}
	} else {
		if err := checkMeta(meta); err != nil {
			return err
		}
		if meta.PasswordHash != "" {
			return fmt.Errorf("%w: vault requires a password", vaultDomain.ErrVaultAuth)
		}
	}

	return u.setCipher(key, cryptoDomain.Algorithm(meta.Algorithm))
}

// initialize writes the metadata row for a brand-new vault. password may be
// nil for key-file vaults.
func (u *vaultUseCase) initialize(ctx context.Context, password []byte) (*vaultDomain.Meta, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate vault salt")
	}

	passwordHash := ""
	if len(password) > 0 {
		var err error
		passwordHash, err = u.passwords.HashPassword(password)
		if err != nil {
			return nil, err
		}
	}

	meta := &vaultDomain.Meta{
		Magic:         vaultDomain.Magic,
		Version:       vaultDomain.MetaVersion,
		Salt:          salt,
		KDFIterations: keysDomain.KDFIterations,
		PasswordHash:  passwordHash,
		Algorithm:     string(u.algorithm),
		CreatedAt:     time.Now().UTC(),
	}

	if err := u.repo.InsertMeta(ctx, meta); err != nil {
		return nil, apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
	}

	return meta, nil
}

func (u *vaultUseCase) setCipher(key []byte, alg cryptoDomain.Algorithm) error {
	aead, err := u.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return err
	}
	u.aead = aead
	return nil
}

func checkMeta(meta *vaultDomain.Meta) error {
	if meta.Magic != vaultDomain.Magic {
		return fmt.Errorf("%w: unknown magic", vaultDomain.ErrVaultIncompatible)
	}
	if meta.Version != vaultDomain.MetaVersion {
		return fmt.Errorf("%w: unsupported version %d", vaultDomain.ErrVaultIncompatible, meta.Version)
	}
	return nil
}

// Store persists an original/anonymized pair with first-writer-wins semantics.
func (u *vaultUseCase) Store(
	ctx context.Context,
	column string,
	dataType string,
	original string,
	anonymized string,
) (*vaultDomain.UpsertOutcome, error) {
	if u.aead == nil {
		return nil, apperrors.New("vault is not open")
	}

	hashKey := hex.EncodeToString(u.schedule.ForwardFingerprint(column, original))
	reverseHashKey := hex.EncodeToString(u.schedule.ReverseFingerprint(column, anonymized))

	payload, err := json.Marshal(vaultDomain.Pair{Original: original, Anonymized: anonymized})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal mapping payload")
	}

	ciphertext, nonce, err := u.aead.Encrypt(payload, []byte(hashKey))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encrypt mapping")
	}

	mapping := &vaultDomain.Mapping{
		ID:             uuid.Must(uuid.NewV7()),
		HashKey:        hashKey,
		ReverseHashKey: reverseHashKey,
		ColumnName:     column,
		DataType:       dataType,
		Ciphertext:     ciphertext,
		Nonce:          nonce,
		CreatedAt:      time.Now().UTC(),
	}

	err = u.repo.Insert(ctx, mapping)
	if err == nil {
		return &vaultDomain.UpsertOutcome{Inserted: true, Anonymized: anonymized}, nil
	}

	if apperrors.Is(err, vaultDomain.ErrAnonymizedCollision) {
		return nil, err
	}

	if apperrors.Is(err, apperrors.ErrConflict) {
		// Another writer claimed this original first; read its value back so
		// every caller converges on one anonymized value.
		existing, err := u.repo.GetByHashKey(ctx, hashKey)
		if err != nil {
			return nil, apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
		}
		pair, err := u.decrypt(existing)
		if err != nil {
			return nil, err
		}
		return &vaultDomain.UpsertOutcome{Inserted: false, Anonymized: pair.Anonymized}, nil
	}

	return nil, apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
}

// Forward retrieves the pair stored for an original value.
func (u *vaultUseCase) Forward(ctx context.Context, column, original string) (*vaultDomain.Pair, error) {
	if u.aead == nil {
		return nil, apperrors.New("vault is not open")
	}

	hashKey := hex.EncodeToString(u.schedule.ForwardFingerprint(column, original))
	mapping, err := u.repo.GetByHashKey(ctx, hashKey)
	if err != nil {
		return nil, err
	}
	return u.decrypt(mapping)
}

// Reverse retrieves the pair stored for an anonymized value.
func (u *vaultUseCase) Reverse(ctx context.Context, column, anonymized string) (*vaultDomain.Pair, error) {
	if u.aead == nil {
		return nil, apperrors.New("vault is not open")
	}

	reverseHashKey := hex.EncodeToString(u.schedule.ReverseFingerprint(column, anonymized))
	mapping, err := u.repo.GetByReverseHashKey(ctx, reverseHashKey)
	if err != nil {
		return nil, err
	}
	return u.decrypt(mapping)
}

// IterColumn streams decrypted pairs of a column for diagnostics.
func (u *vaultUseCase) IterColumn(
	ctx context.Context,
	column string,
	fn func(vaultDomain.Pair) error,
) error {
	if u.aead == nil {
		return apperrors.New("vault is not open")
	}

	return u.repo.IterColumn(ctx, column, func(mapping *vaultDomain.Mapping) error {
		pair, err := u.decrypt(mapping)
		if err != nil {
			return err
		}
		return fn(*pair)
	})
}

// Stats returns vault content statistics.
func (u *vaultUseCase) Stats(ctx context.Context) (*vaultDomain.Stats, error) {
	stats, err := u.repo.Stats(ctx)
	if err != nil {
		return nil, apperrors.Wrap(vaultDomain.ErrVaultIO, err.Error())
	}
	return stats, nil
}

// decrypt opens a mapping's ciphertext. A failed authentication names the
// column and fingerprint; the record is never silently skipped.
func (u *vaultUseCase) decrypt(mapping *vaultDomain.Mapping) (*vaultDomain.Pair, error) {
	plaintext, err := u.aead.Decrypt(mapping.Ciphertext, mapping.Nonce, []byte(mapping.HashKey))
	if err != nil {
		return nil, fmt.Errorf(
			"%w: column=%s key=%s",
			vaultDomain.ErrVaultCorrupt,
			mapping.ColumnName,
			mapping.HashKey,
		)
	}

	var pair vaultDomain.Pair
	if err := json.Unmarshal(plaintext, &pair); err != nil {
		return nil, fmt.Errorf(
			"%w: column=%s key=%s",
			vaultDomain.ErrVaultCorrupt,
			mapping.ColumnName,
			mapping.HashKey,
		)
	}

	return &pair, nil
}
