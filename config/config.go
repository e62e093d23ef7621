package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 服务配置
type Config struct {
	Port      int    `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	AssetsDir string `yaml:"assets_dir"`
}

// Default 内置默认配置
func Default() Config {
	return Config{
		Port:      3000,
		DBPath:    "./todos.db",
		AssetsDir: "./assets",
	}
}

// Load 读取 YAML 配置文件，文件不存在时使用默认配置
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Addr 监听地址
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
