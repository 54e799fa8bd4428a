package config

import (
	"os"
	"strings"
)

type Config struct {
	Addr         string `json:"addr"`
	DBPath       string `json:"db_path"`
	LogLevel     string `json:"log_level"`
	LogDir       string `json:"log_dir"`
	ShareBaseURL string `json:"share_base_url"`
	AssetDir     string `json:"asset_dir"`
}

func NewConfig() *Config {
	cfg := &Config{
		Addr:         ":8080",
		DBPath:       "xinghe.db",
		LogLevel:     "info",
		LogDir:       "logs",
		ShareBaseURL: "https://live.xinghe.app/room",
		AssetDir:     "overlay/assets",
	}

	if addr := os.Getenv("XINGHE_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if dbPath := os.Getenv("XINGHE_DB"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if level := os.Getenv("XINGHE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if dir := os.Getenv("XINGHE_LOG_DIR"); dir != "" {
		cfg.LogDir = dir
	}
	if base := os.Getenv("XINGHE_SHARE_BASE"); base != "" {
		cfg.ShareBaseURL = strings.TrimRight(base, "/")
	}
	if dir := os.Getenv("XINGHE_ASSET_DIR"); dir != "" {
		cfg.AssetDir = dir
	}

	return cfg
}
