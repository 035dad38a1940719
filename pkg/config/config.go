package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PAWNSHOP"

	EnvAppEnv             = "PAWNSHOP_APP_ENV"
	EnvLogLevel           = "PAWNSHOP_LOG_LEVEL"
	EnvLogFormat          = "PAWNSHOP_LOG_FORMAT"
	EnvDataDir            = "PAWNSHOP_DATA_DIR"
	EnvDBPath             = "PAWNSHOP_DB_PATH"
	EnvDBBusyTimeout      = "PAWNSHOP_DB_BUSY_TIMEOUT"
	EnvRecordBackfillSize = "PAWNSHOP_SCHEMA_RECORD_BACKFILL_BATCH"
	EnvItemBackfillSize   = "PAWNSHOP_SCHEMA_ITEM_BACKFILL_BATCH"
	EnvExportSecret       = "PAWNSHOP_EXPORT_SECRET"
	EnvExportSecretHash   = "PAWNSHOP_EXPORT_SECRET_HASH"
	EnvExportChunkSize    = "PAWNSHOP_EXPORT_CHUNK_SIZE"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

type Config struct {
	App      AppConfig
	Paths    PathsConfig
	DB       DBConfig
	Schema   SchemaConfig
	Export   ExportConfig
	Password PasswordConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAWNSHOP_APP_ENV" default:"production"`
	LogLevel     string `envconfig:"PAWNSHOP_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"PAWNSHOP_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"PAWNSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// PathsConfig overrides the on-disk locations resolved by pkg/paths.
type PathsConfig struct {
	DataDir string `envconfig:"PAWNSHOP_DATA_DIR"`
	DBPath  string `envconfig:"PAWNSHOP_DB_PATH"`
}

type DBConfig struct {
	Path         string        `ignored:"true"`
	BusyTimeout  time.Duration `envconfig:"PAWNSHOP_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns int           `envconfig:"PAWNSHOP_DB_MAX_OPEN_CONNS" default:"1"`
}

type SchemaConfig struct {
	RecordBackfillBatch int `envconfig:"PAWNSHOP_SCHEMA_RECORD_BACKFILL_BATCH" default:"2000"`
	ItemBackfillBatch   int `envconfig:"PAWNSHOP_SCHEMA_ITEM_BACKFILL_BATCH" default:"3000"`
}

// ExportConfig gates and paces the spreadsheet export. SecretHash, when set,
// takes precedence over the plain Secret.
type ExportConfig struct {
	Secret     string `envconfig:"PAWNSHOP_EXPORT_SECRET" default:"197781"`
	SecretHash string `envconfig:"PAWNSHOP_EXPORT_SECRET_HASH"`
	ChunkSize  int    `envconfig:"PAWNSHOP_EXPORT_CHUNK_SIZE" default:"500"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PAWNSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PAWNSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PAWNSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PAWNSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PAWNSHOP_ARGON_KEY_LEN" default:"32"`
}

func (c *Config) validate() error {
	format := strings.ToLower(strings.TrimSpace(c.App.LogFormat))
	if format != LogFormatJSON && format != LogFormatConsole {
		return fmt.Errorf("%s must be %q or %q, got %q", EnvLogFormat, LogFormatJSON, LogFormatConsole, c.App.LogFormat)
	}
	c.App.LogFormat = format

	if c.Schema.RecordBackfillBatch <= 0 {
		return fmt.Errorf("%s must be positive", EnvRecordBackfillSize)
	}
	if c.Schema.ItemBackfillBatch <= 0 {
		return fmt.Errorf("%s must be positive", EnvItemBackfillSize)
	}
	if c.Export.ChunkSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvExportChunkSize)
	}
	if strings.TrimSpace(c.Export.Secret) == "" && strings.TrimSpace(c.Export.SecretHash) == "" {
		return fmt.Errorf("either %s or %s is required", EnvExportSecret, EnvExportSecretHash)
	}
	if c.DB.MaxOpenConns <= 0 {
		c.DB.MaxOpenConns = 1
	}
	return nil
}
