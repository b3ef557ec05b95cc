// Package config loads builder.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no --config flag is given. It may be absent.
	DefaultPath = "builder.yaml"

	DefaultPort           = 3000
	DefaultOrigin         = "http://localhost:8080"
	DefaultTransport      = TransportRedis
	DefaultRedisAddr      = "localhost:6379"
	DefaultCommandChannel = "app.send-command"
	DefaultWorldChannel   = "topic.world-updates"
	DefaultWebsocketURL   = "ws://localhost:8080/3d-ws"
	DefaultLogLevel       = "info"
	DefaultLogFile        = "builder.log"
	DefaultMaxTime        = 60.0
	DefaultLabelGutter    = 12.0
	DefaultOutboxSize     = 64
)

const (
	TransportRedis     = "redis"
	TransportWebsocket = "websocket"
)

// DefaultPrices is the per-meter price of the stock profiles, by color.
var DefaultPrices = map[string]float64{
	"#ffffff": 1500,
	"#ff0000": 3200,
	"#0000ff": 2100,
	"#00ff00": 500,
}

type Redis struct {
	Addr           string `yaml:"addr"`
	Password       string `yaml:"password,omitempty"`
	DB             int    `yaml:"db,omitempty"`
	CommandChannel string `yaml:"command_channel"`
	WorldChannel   string `yaml:"world_channel"`
}

type Websocket struct {
	URL string `yaml:"url"`
}

type Log struct {
	Level string `yaml:"level"`
	// File receives the logs while the terminal UI owns the screen.
	File string `yaml:"file"`
}

type Timeline struct {
	MaxTime     float64 `yaml:"max_time"`
	LabelGutter float64 `yaml:"label_gutter"`
}

// Config models builder.yaml.
type Config struct {
	Port       int                `yaml:"port"`
	Origin     string             `yaml:"origin"`
	Transport  string             `yaml:"transport"`
	OutboxSize int                `yaml:"outbox_size"`
	Redis      Redis              `yaml:"redis"`
	Websocket  Websocket          `yaml:"websocket"`
	Log        Log                `yaml:"log"`
	Timeline   Timeline           `yaml:"timeline"`
	Prices     map[string]float64 `yaml:"prices"`
}

func Default() Config {
	prices := make(map[string]float64, len(DefaultPrices))
	for k, v := range DefaultPrices {
		prices[k] = v
	}
	return Config{
		Port:       DefaultPort,
		Origin:     DefaultOrigin,
		Transport:  DefaultTransport,
		OutboxSize: DefaultOutboxSize,
		Redis: Redis{
			Addr:           DefaultRedisAddr,
			CommandChannel: DefaultCommandChannel,
			WorldChannel:   DefaultWorldChannel,
		},
		Websocket: Websocket{URL: DefaultWebsocketURL},
		Log:       Log{Level: DefaultLogLevel, File: DefaultLogFile},
		Timeline:  Timeline{MaxTime: DefaultMaxTime, LabelGutter: DefaultLabelGutter},
		Prices:    prices,
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path means DefaultPath, which is allowed to be missing; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			c.Port = parsed
		}
	}
	if origin := strings.TrimSpace(os.Getenv("ORIGIN")); origin != "" {
		c.Origin = origin
	}
	if transport := strings.TrimSpace(os.Getenv("BUILDER_TRANSPORT")); transport != "" {
		c.Transport = transport
	}
	if addr := strings.TrimSpace(os.Getenv("BUILDER_REDIS_ADDR")); addr != "" {
		c.Redis.Addr = addr
	}
	if url := strings.TrimSpace(os.Getenv("BUILDER_WS_URL")); url != "" {
		c.Websocket.URL = url
	}
	if level := strings.TrimSpace(os.Getenv("BUILDER_LOG_LEVEL")); level != "" {
		c.Log.Level = level
	}
}

func (c *Config) normalize() {
	if !isValidPort(c.Port) {
		c.Port = DefaultPort
	}
	c.Origin = strings.TrimSpace(c.Origin)
	if c.Origin == "" {
		c.Origin = DefaultOrigin
	}
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport != TransportRedis && c.Transport != TransportWebsocket {
		c.Transport = DefaultTransport
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = DefaultOutboxSize
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		c.Redis.Addr = DefaultRedisAddr
	}
	if c.Redis.CommandChannel == "" {
		c.Redis.CommandChannel = DefaultCommandChannel
	}
	if c.Redis.WorldChannel == "" {
		c.Redis.WorldChannel = DefaultWorldChannel
	}
	if strings.TrimSpace(c.Websocket.URL) == "" {
		c.Websocket.URL = DefaultWebsocketURL
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Timeline.MaxTime <= 0 {
		c.Timeline.MaxTime = DefaultMaxTime
	}
	if c.Timeline.LabelGutter < 0 {
		c.Timeline.LabelGutter = DefaultLabelGutter
	}
	for color, price := range c.Prices {
		if price < 0 {
			delete(c.Prices, color)
		}
	}
}

// Address is the local HTTP listen address.
func (c Config) Address() string {
	return ":" + strconv.Itoa(c.Port)
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
