package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	JwtSecret     string `yaml:"jwt_secret"`
	AdminUsername string `yaml:"admin_username"`
	// AdminPassword may be plain text or a bcrypt hash.
	AdminPassword string `yaml:"admin_password"`
}

// AuthEnabled reports whether admin routes require a bearer token.
func (c WebConfig) AuthEnabled() bool {
	return strings.TrimSpace(c.JwtSecret) != ""
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// DSN returns the driver connection string. SQLite names are resolved
// against workdir unless absolute.
func (c DBConfig) DSN(workdir string) string {
	switch strings.ToLower(c.Type) {
	case "sqlite", "sqlite3":
		if c.Name == ":memory:" || filepath.IsAbs(c.Name) {
			return c.Name
		}
		return filepath.Join(workdir, "data", c.Name)
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Passwd, c.Name)
	}
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type SmsConfig struct {
	BaseURL    string `yaml:"base_url"`
	AccountSid string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
}

func (c SmsConfig) Enabled() bool {
	return c.AccountSid != "" && c.AuthToken != "" && c.From != ""
}

type SmtpConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

func (c WebhookConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

// NotifyConfig operator notification channels
type NotifyConfig struct {
	OperatorPhone string        `yaml:"operator_phone"`
	OperatorEmail string        `yaml:"operator_email"`
	Workers       int           `yaml:"workers"`
	TimeoutSecs   int           `yaml:"timeout_secs"`
	LogEnable     bool          `yaml:"log_enable"`
	Sms           SmsConfig     `yaml:"sms"`
	Smtp          SmtpConfig    `yaml:"smtp"`
	Kafka         KafkaConfig   `yaml:"kafka"`
	Webhook       WebhookConfig `yaml:"webhook"`
}

// AppConfig application configuration
type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Notify   NotifyConfig `yaml:"notify"`
}

// GetDataDir returns the directory for local data files
func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// GetLogDir returns the directory for log files
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "TuxedoShop",
		Location: "America/New_York",
		Workdir:  "/var/tuxedoshop",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		AdminUsername: "admin",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "tuxedoshop",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/tuxedoshop/logs/tuxedoshop.log",
	},
	Notify: NotifyConfig{
		Workers:     4,
		TimeoutSecs: 15,
		Sms: SmsConfig{
			BaseURL: "https://api.twilio.com",
		},
		Smtp: SmtpConfig{
			Port: 587,
		},
		Kafka: KafkaConfig{
			Topic: "tuxedoshop.notifications",
		},
	},
}

// LoadConfig reads the YAML file (when present) over the defaults and then
// applies environment overrides.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", cfile, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", cfile, err)
		}
	}

	setEnvValue("TUXEDO_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("TUXEDO_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("TUXEDO_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("TUXEDO_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("TUXEDO_WEB_PORT", &cfg.Web.Port)
	setEnvValue("TUXEDO_WEB_JWT_SECRET", &cfg.Web.JwtSecret)
	setEnvValue("TUXEDO_ADMIN_USERNAME", &cfg.Web.AdminUsername)
	setEnvValue("TUXEDO_ADMIN_PASSWORD", &cfg.Web.AdminPassword)

	setEnvValue("TUXEDO_DB_TYPE", &cfg.Database.Type)
	setEnvValue("TUXEDO_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("TUXEDO_DB_PORT", &cfg.Database.Port)
	setEnvValue("TUXEDO_DB_NAME", &cfg.Database.Name)
	setEnvValue("TUXEDO_DB_USER", &cfg.Database.User)
	setEnvValue("TUXEDO_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("TUXEDO_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("TUXEDO_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("TUXEDO_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	// Twilio variable names kept for existing deployments.
	setEnvValue("TWILIO_ACCOUNT_SID", &cfg.Notify.Sms.AccountSid)
	setEnvValue("TWILIO_AUTH_TOKEN", &cfg.Notify.Sms.AuthToken)
	setEnvValue("TWILIO_PHONE_NUMBER", &cfg.Notify.Sms.From)
	setEnvValue("ADMIN_PHONE_NUMBER", &cfg.Notify.OperatorPhone)
	setEnvValue("TUXEDO_OPERATOR_EMAIL", &cfg.Notify.OperatorEmail)
	setEnvIntValue("TUXEDO_NOTIFY_WORKERS", &cfg.Notify.Workers)
	setEnvValue("TUXEDO_SMTP_HOST", &cfg.Notify.Smtp.Host)
	setEnvIntValue("TUXEDO_SMTP_PORT", &cfg.Notify.Smtp.Port)
	setEnvValue("TUXEDO_SMTP_USER", &cfg.Notify.Smtp.User)
	setEnvValue("TUXEDO_SMTP_PASS", &cfg.Notify.Smtp.Pass)
	setEnvValue("TUXEDO_SMTP_FROM", &cfg.Notify.Smtp.From)
	setEnvSliceValue("TUXEDO_KAFKA_BROKERS", &cfg.Notify.Kafka.Brokers)
	setEnvValue("TUXEDO_KAFKA_TOPIC", &cfg.Notify.Kafka.Topic)
	setEnvValue("TUXEDO_WEBHOOK_URL", &cfg.Notify.Webhook.URL)

	return &cfg, nil
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if b, err := cast.ToBoolE(v); err == nil {
			*val = b
		}
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func setEnvSliceValue(name string, val *[]string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		*val = out
	}
}
