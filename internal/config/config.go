package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Backend Backend `envPrefix:"BACKEND_"`
	Storage Storage `envPrefix:"STORAGE_"`
}

// Backend is the remote ShopScript REST API the gateway talks to for all
// persistent platform state.
type Backend struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Storage configures the local state store holding the auth token, the user
// profile and per-user cart snapshots between restarts.
type Storage struct {
	Driver    string `env:"DRIVER" envDefault:"sqlite"` // sqlite, redis, memory
	Path      string `env:"PATH" envDefault:"shopscript-state.db"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"3000"`
}
