package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// config holds the settings shared by the config file and the command line.
type config struct {
	Reader       int
	ReaderName   string
	LogLevel     string
	ExportPath   string
	ExportLength int // 0 reads the length from the certificate header
	ReportPath   string
}

// config.toml key mapping.
type fileConfig struct {
	Reader       int    `toml:"reader"`
	ReaderName   string `toml:"reader_name"`
	LogLevel     string `toml:"log_level"`
	ExportPath   string `toml:"export_path"`
	ExportLength int    `toml:"export_length"`
	ReportPath   string `toml:"report_path"`
}

func defaultConfig() config {
	return config{
		LogLevel:     "info",
		ExportPath:   "card-cert.der",
		ExportLength: 0,
	}
}

// loadConfig overlays the keys defined in the TOML file at path on the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("reader") {
		cfg.Reader = raw.Reader
	}
	if meta.IsDefined("reader_name") {
		cfg.ReaderName = strings.TrimSpace(raw.ReaderName)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("export_path") {
		cfg.ExportPath = strings.TrimSpace(raw.ExportPath)
	}
	if meta.IsDefined("export_length") {
		cfg.ExportLength = raw.ExportLength
	}
	if meta.IsDefined("report_path") {
		cfg.ReportPath = strings.TrimSpace(raw.ReportPath)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Reader < 0 {
		return fmt.Errorf("reader index %d is negative", c.Reader)
	}
	if c.ExportLength < 0 || c.ExportLength > 65536 {
		return fmt.Errorf("export_length %d out of range (0..65536)", c.ExportLength)
	}
	if c.ExportPath == "" {
		return fmt.Errorf("export_path is empty")
	}
	return nil
}
