package config

import "time"

// Config is the root configuration schema shared by both tools. Each binary
// reads only the sections it needs.
type Config struct {
	Global   GlobalConfig   `mapstructure:"global"`
	Influx   InfluxConfig   `mapstructure:"influx"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Validate ValidateConfig `mapstructure:"validate"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type GlobalConfig struct {
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"` // json or console
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	ConfigPassphrase string        `mapstructure:"config_passphrase"` // optional; may come from env
}

// InfluxConfig describes the server connection for the stats reporter.
type InfluxConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Database           string        `mapstructure:"database"` // empty means all databases
	SSL                bool          `mapstructure:"ssl"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

type StatsConfig struct {
	Detailed bool `mapstructure:"detailed"`
}

// ValidateConfig controls the backup validator.
type ValidateConfig struct {
	Verbose       bool   `mapstructure:"verbose"`
	WorkDir       string `mapstructure:"work_dir"`       // fixed extraction workspace; temp dir when empty
	DecryptionKey string `mapstructure:"decryption_key"` // for .enc archives (base64 or hex)
}

type StorageConfig struct {
	S3 S3Store `mapstructure:"s3"`
}

type S3Store struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	SessionToken    string `mapstructure:"session_token"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
	TLSInsecureSkip bool   `mapstructure:"tls_insecure_skip"`
}
