package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	Redis Redis `yaml:"redis"`

	App App `yaml:"app"`

	Guest Guest `yaml:"guest"`

	Invitations Invitations `yaml:"invitations"`
}

type Server struct {
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
}

type JWT struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type App struct {
	FrontendURL string `yaml:"frontend_url"`
}

type Guest struct {
	AccountTTLHours int `yaml:"account_ttl_hours"` // guest account lifetime per table
	SessionTTLHours int `yaml:"session_ttl_hours"` // credential window per diner sitting
}

type Invitations struct {
	TableTTLHours int `yaml:"table_ttl_hours"`
	StaffTTLDays  int `yaml:"staff_ttl_days"`
}

func Load() (*Config, error) {
	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	// Secrets can be overridden from the environment (.env is loaded in main)
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Guest.AccountTTLHours == 0 {
		c.Guest.AccountTTLHours = 12
	}
	if c.Guest.SessionTTLHours == 0 {
		c.Guest.SessionTTLHours = 2
	}
	if c.Invitations.TableTTLHours == 0 {
		c.Invitations.TableTTLHours = 24
	}
	if c.Invitations.StaffTTLDays == 0 {
		c.Invitations.StaffTTLDays = 7
	}
	if c.App.FrontendURL == "" {
		c.App.FrontendURL = "http://localhost:3000"
	}
}
