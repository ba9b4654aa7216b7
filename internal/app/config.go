package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl workspace files
	CachePath  string // figure cache root
	SavePath   string // annotation save root
	User       string // save namespace

	LogFormat string
	LogLevel  string
	MemoSize  int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.SavePath == "" {
		return nil, errors.New("SavePath is a required configuration field and cannot be empty")
	}
	if cfg.CachePath == "" {
		return nil, errors.New("CachePath is a required configuration field and cannot be empty")
	}
	if cfg.User == "" {
		return nil, errors.New("User is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
