package maintenance_api

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"VCS_FMS_Microservice/internal/probe"
)

type AppConfig struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Sweep    SweepConfig
	Target   probe.TargetConfig
}

type ServerConfig struct {
	Port     string `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" required:"true"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DB" required:"true"`
}

type SweepConfig struct {
	InventoryPath  string        `envconfig:"FLEET_INVENTORY_PATH" default:"fleet.yaml"`
	Concurrency    int           `envconfig:"SWEEP_CONCURRENCY" default:"10"`
	PerHostTimeout time.Duration `envconfig:"SWEEP_PER_HOST_TIMEOUT" default:"30s"`
	ConnectTimeout time.Duration `envconfig:"PROBE_CONNECT_TIMEOUT" default:"10s"`
	BatchTimeout   time.Duration `envconfig:"PROBE_BATCH_TIMEOUT" default:"60s"`
}

func LoadConfig(path string) (AppConfig, error) {
	_ = godotenv.Load(path)

	var cfg AppConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}
