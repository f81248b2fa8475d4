package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port    string `yaml:"port"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Game struct {
		QuestionTime    string `yaml:"questionTime"`
		QuestionTimeout string `yaml:"questionTimeout"`
		RevealDelay     string `yaml:"revealDelay"`
		IdleTimeout     string `yaml:"idleTimeout"`
		Retention       string `yaml:"retention"`
	} `yaml:"game"`
	Questions struct {
		TTL      string `yaml:"ttl"`
		Generate bool   `yaml:"generate"`
	} `yaml:"questions"`
	OpenAI struct {
		APIKey   string `yaml:"apiKey"`
		BaseURL  string `yaml:"baseURL"`
		Model    string `yaml:"model"`
		TTSModel string `yaml:"ttsModel"`
		Voice    string `yaml:"voice"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"openai"`
	Audio struct {
		Dir string `yaml:"dir"`
	} `yaml:"audio"`
	Admin struct {
		PasswordHash string `yaml:"passwordHash"`
	} `yaml:"admin"`
}

// Load reads YAML config from path. ${VAR} references are expanded from the environment first.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
