package config

import (
	"errors"
	"time"
)

// Config is the application configuration root.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Log      LogConfig      `mapstructure:"log"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// WorkflowConfig settings for the external webhook backends that generate,
// merge and publish videos. The original workflows impose no timeouts of their
// own; every call here gets an explicit bound so a failed backend surfaces as
// a failed unit instead of a forever-pending one.
type WorkflowConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	ScriptTimeout     time.Duration `mapstructure:"script_timeout"`
	GenerateTimeout   time.Duration `mapstructure:"generate_timeout"`
	MergeTimeout      time.Duration `mapstructure:"merge_timeout"`
	PublishTimeout    time.Duration `mapstructure:"publish_timeout"`
	RequireBackground bool          `mapstructure:"require_background"`
	MaxClipSize       int64         `mapstructure:"max_clip_size"`
}

// LogConfig zerolog settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB settings. An empty URI disables persistence and the
// orchestrator runs purely in memory.
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis settings. An empty Addr disables the script cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig token validation settings. Token issuing and refresh live in an
// external collaborator; this service only verifies bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StorageConfig clip storage settings.
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig local filesystem storage.
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`
	BaseURL       string `mapstructure:"base_url"`
	PresignExpiry int    `mapstructure:"presign_expiry"`
}

// OSSConfig Aliyun OSS storage.
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"`
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Workflow.BaseURL == "" {
		return errors.New("workflow.base_url is required")
	}

	return nil
}
