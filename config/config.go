package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/medispatch/engine/core/factory"
)

type Config struct {
	API     APIConfig              `json:"api"`
	Engine  EngineConfig           `json:"engine"`
	Roster  RosterConfig           `json:"roster"`
	Routing RoutingConfig          `json:"routing"`
	History HistoryConfig          `json:"history"`
	Storage StorageConfig          `json:"storage"`
	Metrics []factory.ModuleConfig `json:"metrics"`
	Audit   AuditConfig            `json:"audit"`
	Cache   CacheConfig            `json:"cache"`
	Jobs    JobsConfig             `json:"jobs"`
	Sentry  SentryConfig           `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "md_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Engine.SetDefaults()
	cfg.Roster.SetDefaults()
	cfg.Cache.SetDefaults()
	cfg.Jobs.SetDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Roster.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
