package config

type Config struct {
	Database   DatabaseConfig `mapstructure:"database"`
	API        APIConfig      `mapstructure:"api"`
	ConfigPath string         `mapstructure:"-"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	TokenPath      string `mapstructure:"token_path"`
}

func NewDefault() *Config {
	return &Config{
		Database: DatabaseConfig{Path: ""},
		API: APIConfig{
			BaseURL:        "http://localhost:5000/api",
			TimeoutSeconds: 10,
		},
	}
}
