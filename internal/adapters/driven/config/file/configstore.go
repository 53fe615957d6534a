package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore reads and writes the application configuration as TOML.
// Values absent from the file keep their defaults, so a partial file (say,
// just the embedding section) is valid.
type ConfigStore struct {
	filePath string
}

// fileConfig mirrors domain.Settings with TOML tags. Durations are held as
// strings ("30s") because TOML has no duration type.
type fileConfig struct {
	Retrieval struct {
		WindowSize          int    `toml:"window_size"`
		Overlap             int    `toml:"overlap"`
		InitialK            int    `toml:"initial_k"`
		FinalK              int    `toml:"final_k"`
		TokenBudget         int    `toml:"token_budget"`
		RerankWorkers       int    `toml:"rerank_workers"`
		CollaboratorTimeout string `toml:"collaborator_timeout"`
	} `toml:"retrieval"`

	Embedding struct {
		Provider   string `toml:"provider"`
		Model      string `toml:"model"`
		BaseURL    string `toml:"base_url"`
		APIKey     string `toml:"api_key"`
		Dimensions int    `toml:"dimensions"`
	} `toml:"embedding"`

	Reranker struct {
		Provider string `toml:"provider"`
		Model    string `toml:"model"`
		BaseURL  string `toml:"base_url"`
		APIKey   string `toml:"api_key"`
	} `toml:"reranker"`

	Storage struct {
		DataDir     string `toml:"data_dir"`
		PostgresURL string `toml:"postgres_url"`
	} `toml:"storage"`

	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
}

// NewConfigStore creates a TOML config store.
// If configDir is empty, defaults to ~/.docsift/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docsift")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads the configuration, overlaying file values on the defaults.
// A missing file yields the defaults.
func (s *ConfigStore) Load() (domain.Settings, error) {
	settings := domain.DefaultSettings()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return settings, fmt.Errorf("parse config: %w", err)
	}

	applyFileConfig(&settings, fc)

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("config %s: %w", s.filePath, err)
	}
	return settings, nil
}

// applyFileConfig copies set (non-zero) file values onto the settings.
func applyFileConfig(settings *domain.Settings, fc fileConfig) {
	r := &settings.Retrieval
	if fc.Retrieval.WindowSize != 0 {
		r.WindowSize = fc.Retrieval.WindowSize
	}
	if fc.Retrieval.Overlap != 0 {
		r.Overlap = fc.Retrieval.Overlap
	}
	if fc.Retrieval.InitialK != 0 {
		r.InitialK = fc.Retrieval.InitialK
	}
	if fc.Retrieval.FinalK != 0 {
		r.FinalK = fc.Retrieval.FinalK
	}
	if fc.Retrieval.TokenBudget != 0 {
		r.TokenBudget = fc.Retrieval.TokenBudget
	}
	if fc.Retrieval.RerankWorkers != 0 {
		r.RerankWorkers = fc.Retrieval.RerankWorkers
	}
	if fc.Retrieval.CollaboratorTimeout != "" {
		if d, err := time.ParseDuration(fc.Retrieval.CollaboratorTimeout); err == nil {
			r.CollaboratorTimeout = d
		}
	}

	e := &settings.Embedding
	if fc.Embedding.Provider != "" {
		e.Provider = domain.AIProvider(fc.Embedding.Provider)
	}
	if fc.Embedding.Model != "" {
		e.Model = fc.Embedding.Model
	}
	if fc.Embedding.BaseURL != "" {
		e.BaseURL = fc.Embedding.BaseURL
	}
	if fc.Embedding.APIKey != "" {
		e.APIKey = fc.Embedding.APIKey
	}
	if fc.Embedding.Dimensions != 0 {
		e.Dimensions = fc.Embedding.Dimensions
	}

	rr := &settings.Reranker
	if fc.Reranker.Provider != "" {
		rr.Provider = domain.AIProvider(fc.Reranker.Provider)
	}
	if fc.Reranker.Model != "" {
		rr.Model = fc.Reranker.Model
	}
	if fc.Reranker.BaseURL != "" {
		rr.BaseURL = fc.Reranker.BaseURL
	}
	if fc.Reranker.APIKey != "" {
		rr.APIKey = fc.Reranker.APIKey
	}

	if fc.Storage.DataDir != "" {
		settings.Storage.DataDir = fc.Storage.DataDir
	}
	if fc.Storage.PostgresURL != "" {
		settings.Storage.PostgresURL = fc.Storage.PostgresURL
	}
	if fc.Server.Addr != "" {
		settings.Server.Addr = fc.Server.Addr
	}
}

// Save persists the configuration to the TOML file.
func (s *ConfigStore) Save(settings domain.Settings) error {
	var fc fileConfig

	fc.Retrieval.WindowSize = settings.Retrieval.WindowSize
	fc.Retrieval.Overlap = settings.Retrieval.Overlap
	fc.Retrieval.InitialK = settings.Retrieval.InitialK
	fc.Retrieval.FinalK = settings.Retrieval.FinalK
	fc.Retrieval.TokenBudget = settings.Retrieval.TokenBudget
	fc.Retrieval.RerankWorkers = settings.Retrieval.RerankWorkers
	fc.Retrieval.CollaboratorTimeout = settings.Retrieval.CollaboratorTimeout.String()

	fc.Embedding.Provider = settings.Embedding.Provider.String()
	fc.Embedding.Model = settings.Embedding.Model
	fc.Embedding.BaseURL = settings.Embedding.BaseURL
	fc.Embedding.APIKey = settings.Embedding.APIKey
	fc.Embedding.Dimensions = settings.Embedding.Dimensions

	fc.Reranker.Provider = settings.Reranker.Provider.String()
	fc.Reranker.Model = settings.Reranker.Model
	fc.Reranker.BaseURL = settings.Reranker.BaseURL
	fc.Reranker.APIKey = settings.Reranker.APIKey

	fc.Storage.DataDir = settings.Storage.DataDir
	fc.Storage.PostgresURL = settings.Storage.PostgresURL
	fc.Server.Addr = settings.Server.Addr

	data, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// API keys live here; keep the file private.
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
