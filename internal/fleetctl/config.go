package fleetctl

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"VCS_FMS_Microservice/internal/probe"
	"VCS_FMS_Microservice/pkg/infra"
)

type AppConfig struct {
	Server      ServerConfig
	Target      probe.TargetConfig
	Probe       ProbeConfig
	Sweep       SweepConfig
	Knowledge   KnowledgeConfig
	Redis       infra.RedisConfig
	Notify      NotifyConfig
	Mail        MailConfig
	Kafka       KafkaConfig
	Watchdog    WatchdogConfig
	Remediation RemediationConfig
}

type ServerConfig struct {
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	InventoryPath string `envconfig:"FLEET_INVENTORY_PATH" default:"fleet.yaml"`
}

type ProbeConfig struct {
	SSHDialTimeout time.Duration `envconfig:"PROBE_SSH_DIAL_TIMEOUT" default:"10s"`
	ConnectTimeout time.Duration `envconfig:"PROBE_CONNECT_TIMEOUT" default:"10s"`
	BatchTimeout   time.Duration `envconfig:"PROBE_BATCH_TIMEOUT" default:"60s"`
}

type SweepConfig struct {
	Concurrency    int           `envconfig:"SWEEP_CONCURRENCY" default:"10"`
	PerHostTimeout time.Duration `envconfig:"SWEEP_PER_HOST_TIMEOUT" default:"30s"`
}

type KnowledgeConfig struct {
	BaseURL        string        `envconfig:"KB_BASE_URL" default:"http://127.0.0.1:8700"`
	Token          string        `envconfig:"KB_TOKEN"`
	MaxRetries     int           `envconfig:"KB_MAX_RETRIES" default:"3"`
	RequestTimeout time.Duration `envconfig:"KB_REQUEST_TIMEOUT" default:"10s"`
	InitialBackoff time.Duration `envconfig:"KB_INITIAL_BACKOFF" default:"500ms"`
	CacheEnabled   bool          `envconfig:"KB_CACHE_ENABLED" default:"false"`
	CacheTTL       time.Duration `envconfig:"KB_CACHE_TTL" default:"5m"`
}

type NotifyConfig struct {
	WebhookURL     string        `envconfig:"NOTIFY_WEBHOOK_URL"`
	WebhookToken   string        `envconfig:"NOTIFY_WEBHOOK_TOKEN"`
	RequestTimeout time.Duration `envconfig:"NOTIFY_REQUEST_TIMEOUT" default:"10s"`
	DefaultChannel string        `envconfig:"NOTIFY_DEFAULT_CHANNEL"`
}

type MailConfig struct {
	Email            string `envconfig:"MAIL_EMAIL"`
	Password         string `envconfig:"MAIL_PASSWORD"`
	Host             string `envconfig:"MAIL_HOST"`
	Port             int    `envconfig:"MAIL_PORT" default:"587"`
	AdminMailAddress string `envconfig:"MAIL_ADMIN_EMAIL"`
}

type KafkaConfig struct {
	Enabled        bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers        []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	DiagnosisTopic string   `envconfig:"KAFKA_DIAGNOSIS_TOPIC" default:"fms.diagnosis"`
	FixTopic       string   `envconfig:"KAFKA_FIX_TOPIC" default:"fms.fix"`
}

type WatchdogConfig struct {
	Instance   string        `envconfig:"WATCHDOG_INSTANCE" default:"self"`
	StatePath  string        `envconfig:"WATCHDOG_STATE_PATH" default:"/var/lib/fms/watchdog.json"`
	BackupDir  string        `envconfig:"WATCHDOG_BACKUP_DIR"`
	Interval   time.Duration `envconfig:"WATCHDOG_INTERVAL" default:"120s"`
	SettleTime time.Duration `envconfig:"WATCHDOG_SETTLE_TIME" default:"15s"`
}

type RemediationConfig struct {
	AgentCommand string        `envconfig:"REMEDIATION_AGENT_COMMAND"`
	ExecTimeout  time.Duration `envconfig:"REMEDIATION_EXEC_TIMEOUT" default:"2m"`
}

func LoadConfig(path string) (AppConfig, error) {
	_ = godotenv.Load(path)

	var cfg AppConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}
