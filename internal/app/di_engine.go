package app

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/engine"
	engineHTTP "github.com/allisson/anonymizer/internal/engine/http"
	keysService "github.com/allisson/anonymizer/internal/keys/service"
	"github.com/allisson/anonymizer/internal/tabular"
	"github.com/allisson/anonymizer/internal/transform"
	vaultUseCase "github.com/allisson/anonymizer/internal/vault/usecase"
)

// Schedule returns the key schedule instance.
func (c *Container) Schedule() (*keysService.Schedule, error) {
	var err error
	c.scheduleInit.Do(func() {
		c.schedule, err = c.initSchedule()
		if err != nil {
			c.initErrors["schedule"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["schedule"]; exists {
		return nil, storedErr
	}
	return c.schedule, nil
}

// Corpora returns the loaded replacement corpora.
func (c *Container) Corpora() (*corpus.Corpora, error) {
	var err error
	c.corporaInit.Do(func() {
		c.corpora, err = corpus.Load()
		if err != nil {
			c.initErrors["corpora"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["corpora"]; exists {
		return nil, storedErr
	}
	return c.corpora, nil
}

// Engine returns the anonymization engine instance.
func (c *Container) Engine() (*engine.Engine, error) {
	var err error
	c.engineInit.Do(func() {
		c.engine, err = c.initEngine()
		if err != nil {
			c.initErrors["engine"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["engine"]; exists {
		return nil, storedErr
	}
	return c.engine, nil
}

// Pipeline returns the tabular pipeline instance.
func (c *Container) Pipeline() (*tabular.Pipeline, error) {
	var err error
	c.pipelineInit.Do(func() {
		c.pipeline, err = c.initPipeline()
		if err != nil {
			c.initErrors["pipeline"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipeline"]; exists {
		return nil, storedErr
	}
	return c.pipeline, nil
}

// EngineHandler returns the engine HTTP handler instance.
func (c *Container) EngineHandler() (*engineHTTP.EngineHandler, error) {
	var err error
	c.engineHandlerInit.Do(func() {
		c.engineHandler, err = c.initEngineHandler()
		if err != nil {
			c.initErrors["engineHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["engineHandler"]; exists {
		return nil, storedErr
	}
	return c.engineHandler, nil
}

// engineOptions resolves the engine options from configuration. A configured
// profile wins over the standalone mode setting.
func (c *Container) engineOptions() (engine.Options, error) {
	profile, err := engine.ProfileByName(c.config.Profile)
	if err != nil {
		return engine.Options{}, err
	}

	if c.config.Profile == "" && c.config.Mode != "" {
		profile.Mode = transform.Mode(c.config.Mode)
	}

	var columns []string
	for _, column := range strings.Split(c.config.Columns, ",") {
		if trimmed := strings.TrimSpace(column); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}

	return engine.Options{
		Profile:         profile,
		Columns:         columns,
		Lenient:         !c.config.StrictMode,
		PreserveDomains: c.config.PreserveDomains,
		SeedPresent:     c.config.Seed != "",
	}, nil
}

// engineNeedsVault reports whether the configured run stores mappings.
func (c *Container) engineNeedsVault() bool {
	options, err := c.engineOptions()
	if err != nil {
		return true
	}
	return !options.Profile.FullySynthetic && options.Profile.Mode != transform.ModeHMAC
}

// initSchedule creates the key schedule from the configured seed.
func (c *Container) initSchedule() (*keysService.Schedule, error) {
	var seed []byte
	if c.config.Seed != "" {
		decoded, err := hex.DecodeString(c.config.Seed)
		if err != nil {
			return nil, fmt.Errorf("invalid hex seed: %w", err)
		}
		seed = decoded
	}

	schedule, err := keysService.NewSchedule(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create key schedule: %w", err)
	}
	return schedule, nil
}

// initEngine creates the anonymization engine with all its dependencies.
func (c *Container) initEngine() (*engine.Engine, error) {
	options, err := c.engineOptions()
	if err != nil {
		return nil, err
	}

	schedule, err := c.Schedule()
	if err != nil {
		return nil, fmt.Errorf("failed to get key schedule for engine: %w", err)
	}

	corpora, err := c.Corpora()
	if err != nil {
		return nil, fmt.Errorf("failed to get corpora for engine: %w", err)
	}

	// Fully synthetic and hmac runs never touch the vault, so its database is
	// not opened at all.
	var vault vaultUseCase.VaultUseCase
	if c.engineNeedsVault() {
		vault, err = c.VaultUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get vault use case for engine: %w", err)
		}
	}

	return engine.New(options, schedule, corpora, vault, c.Logger())
}

// initPipeline creates the tabular pipeline with all its dependencies.
func (c *Container) initPipeline() (*tabular.Pipeline, error) {
	eng, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine for pipeline: %w", err)
	}

	return tabular.NewPipeline(eng, c.config.Workers, c.config.ChunkSize, c.config.SampleSize, c.Logger()), nil
}

// initEngineHandler creates the engine HTTP handler with all its dependencies.
func (c *Container) initEngineHandler() (*engineHTTP.EngineHandler, error) {
	eng, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to get engine for engine handler: %w", err)
	}

	return engineHTTP.NewEngineHandler(eng, c.Logger()), nil
}
