package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
)

// Config carries the process-wide settings the listener and handlers are
// constructed with. Nothing in here is global state, the values are passed
// down explicitly.
type Config struct {
	Address  string `json:"address"`
	Port     uint16 `json:"port"`
	LogLevel string `json:"log_level"`
	// Greeting is the message sent to every client right after accept.
	Greeting string `json:"greeting"`
	// Users maps usernames to plaintext passwords. They are hashed when
	// seeded into the auth store at startup.
	Users map[string]string `json:"users"`
}

func Default() Config {
	return Config{
		Address:  "127.0.0.1",
		Port:     4242,
		LogLevel: "info",
		Greeting: "Welcome to rowd",
	}
}

// Load reads a JSON config file and fills missing fields with defaults. An
// empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file Config
	if err := json.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if file.Address != "" {
		cfg.Address = file.Address
	}
	if file.Port != 0 {
		cfg.Port = file.Port
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.Greeting != "" {
		cfg.Greeting = file.Greeting
	}
	cfg.Users = file.Users
	return cfg, nil
}

// Addr returns the host:port string to bind or dial.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(int(c.Port)))
}
