package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	cryptoService "github.com/allisson/anonymizer/internal/crypto/service"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
	vaultRepository "github.com/allisson/anonymizer/internal/vault/repository"
	vaultMySQL "github.com/allisson/anonymizer/internal/vault/repository/mysql"
	vaultService "github.com/allisson/anonymizer/internal/vault/service"
	vaultUseCase "github.com/allisson/anonymizer/internal/vault/usecase"
)

// MappingRepository returns the mapping repository instance.
func (c *Container) MappingRepository() (vaultUseCase.MappingRepository, error) {
	var err error
	c.mappingRepositoryInit.Do(func() {
		c.mappingRepository, err = c.initMappingRepository()
		if err != nil {
			c.initErrors["mappingRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["mappingRepository"]; exists {
		return nil, storedErr
	}
	return c.mappingRepository, nil
}

// VaultUseCase returns the mapping vault use case instance.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vaultUseCase, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultUseCase, nil
}

// KeyFileService returns the vault key file service instance.
func (c *Container) KeyFileService() (*keysService.KeyFileService, error) {
	var err error
	c.keyFileServiceInit.Do(func() {
		c.keyFileService, err = c.initKeyFileService()
		if err != nil {
			c.initErrors["keyFileService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyFileService"]; exists {
		return nil, storedErr
	}
	return c.keyFileService, nil
}

// OpenVault opens (or initializes) the mapping vault using the configured
// credentials. A configured password takes precedence; otherwise the key file
// is loaded, or a fresh key is generated and exported on first use. Runs that
// never store mappings skip the vault entirely.
func (c *Container) OpenVault(ctx context.Context) error {
	if !c.engineNeedsVault() {
		return nil
	}

	useCase, err := c.VaultUseCase()
	if err != nil {
		return err
	}

	if c.config.VaultPassword != "" {
		return useCase.OpenWithPassword(ctx, []byte(c.config.VaultPassword))
	}

	keyFiles, err := c.KeyFileService()
	if err != nil {
		return err
	}

	key, err := keyFiles.Load(ctx, c.config.VaultKeyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load vault key file: %w", err)
		}

		key, err = keysService.GenerateVaultKey()
		if err != nil {
			return fmt.Errorf("failed to generate vault key: %w", err)
		}
		if err := keyFiles.Export(ctx, c.config.VaultKeyFile, key); err != nil {
			return fmt.Errorf("failed to export vault key file: %w", err)
		}

		c.Logger().Info("generated new vault key", "key_file", c.config.VaultKeyFile)
	}

	return useCase.OpenWithKey(ctx, key)
}

// initMappingRepository creates the mapping repository based on the vault driver.
func (c *Container) initMappingRepository() (vaultUseCase.MappingRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for mapping repository: %w", err)
	}

	switch c.config.VaultDriver {
	case "sqlite":
		return vaultRepository.NewSQLiteMappingRepository(db), nil
	case "postgres":
		return vaultRepository.NewPostgreSQLMappingRepository(db), nil
	case "mysql":
		return vaultMySQL.NewMySQLMappingRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported vault driver: %s", c.config.VaultDriver)
	}
}

// initVaultUseCase creates the vault use case with all its dependencies.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	repository, err := c.MappingRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping repository for vault use case: %w", err)
	}

	schedule, err := c.Schedule()
	if err != nil {
		return nil, fmt.Errorf("failed to get key schedule for vault use case: %w", err)
	}

	baseUseCase := vaultUseCase.NewVaultUseCase(
		repository,
		schedule,
		cryptoService.NewAEADManager(),
		vaultService.NewPasswordService(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
		}
		return vaultUseCase.NewVaultUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyFileService creates the key file service, wiring in a KMS keeper when
// a key URI is configured.
func (c *Container) initKeyFileService() (*keysService.KeyFileService, error) {
	if c.config.KMSKeyURI == "" {
		return keysService.NewKeyFileService(nil), nil
	}

	keeper, err := cryptoService.NewKMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}

	return keysService.NewKeyFileService(keeper), nil
}
