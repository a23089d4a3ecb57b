// Package config turns viper settings (flags, environment, config file) into
// the explicit Config value the sync commands run with.
package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	go_ora "github.com/sijms/go-ora/v2"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeySourceDriver   = "source.driver"
	KeySourceHost     = "source.host"
	KeySourcePort     = "source.port"
	KeySourceDatabase = "source.database"
	KeySourceUsername = "source.username"
	KeySourcePassword = "source.password"
	KeySourceDSN      = "source.dsn"

	KeyTargetDriver   = "target.driver"
	KeyTargetHost     = "target.host"
	KeyTargetPort     = "target.port"
	KeyTargetDatabase = "target.database"
	KeyTargetUsername = "target.username"
	KeyTargetPassword = "target.password"
	KeyTargetSSLMode  = "target.sslmode"
	KeyTargetDSN      = "target.dsn"

	KeyBatchSize       = "sync.batch_size"
	KeyIncludeOptional = "sync.include_optional"
	KeyEntities        = "sync.entities"
	KeyDryRun          = "sync.dry_run"
	KeyConnectTimeout  = "sync.connect_timeout"
	KeyParamLimit      = "sync.param_limit"

	KeyLogFile  = "log.file"
	KeyLogLevel = "log.level"
)

// envNames maps each key to its environment variable.
var envNames = map[string]string{
	KeySourceDriver:   "SQL_DRIVER",
	KeySourceHost:     "SQL_SERVER",
	KeySourcePort:     "SQL_PORT",
	KeySourceDatabase: "SQL_DATABASE",
	KeySourceUsername: "SQL_USERNAME",
	KeySourcePassword: "SQL_PASSWORD",
	KeySourceDSN:      "SQL_DSN",

	KeyTargetDriver:   "PG_DRIVER",
	KeyTargetHost:     "PG_HOST",
	KeyTargetPort:     "PG_PORT",
	KeyTargetDatabase: "PG_DATABASE",
	KeyTargetUsername: "PG_USERNAME",
	KeyTargetPassword: "PG_PASSWORD",
	KeyTargetSSLMode:  "PG_SSLMODE",
	KeyTargetDSN:      "PG_DSN",

	KeyBatchSize:       "BATCH_SIZE",
	KeyIncludeOptional: "SYNC_CASH_TRANSACTIONS",
	KeyEntities:        "SYNC_ENTITIES",
	KeyDryRun:          "SYNC_DRY_RUN",
	KeyConnectTimeout:  "CONNECT_TIMEOUT",
	KeyParamLimit:      "PARAM_LIMIT",

	KeyLogFile:  "LOG_FILE",
	KeyLogLevel: "LOG_LEVEL",
}

// Bind registers environment variable names and non-secret defaults on v.
// Credentials, hosts and database names have no default.
func Bind(v *viper.Viper) error {
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetDefault(KeySourceDriver, "sqlserver")
	v.SetDefault(KeyTargetDriver, "postgres")
	v.SetDefault(KeyTargetSSLMode, "require")
	v.SetDefault(KeyBatchSize, 1000)
	v.SetDefault(KeyIncludeOptional, false)
	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyConnectTimeout, "30s")
	v.SetDefault(KeyLogFile, "sync.log")
	v.SetDefault(KeyLogLevel, "info")
	return nil
}

// EnvName returns the environment variable bound to key.
func EnvName(key string) string {
	return envNames[key]
}

// Database is the connection settings of one side.
type Database struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	Username string
	Password string
	SSLMode  string
	DSN      string // Full connection string; overrides the fields above
}

// Config is everything a sync or check run needs.
type Config struct {
	Source Database
	Target Database

	BatchSize       int
	IncludeOptional bool
	Entities        []string
	DryRun          bool
	ConnectTimeout  time.Duration
	ParamLimit      int

	LogFile  string
	LogLevel string
}

// Load reads and validates the configuration. Every missing required setting
// is reported in one error, before any connection is attempted.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Source: Database{
			Driver:   strings.TrimSpace(v.GetString(KeySourceDriver)),
			Host:     v.GetString(KeySourceHost),
			Name:     v.GetString(KeySourceDatabase),
			Username: v.GetString(KeySourceUsername),
			Password: v.GetString(KeySourcePassword),
			DSN:      v.GetString(KeySourceDSN),
		},
		Target: Database{
			Driver:   strings.TrimSpace(v.GetString(KeyTargetDriver)),
			Host:     v.GetString(KeyTargetHost),
			Name:     v.GetString(KeyTargetDatabase),
			Username: v.GetString(KeyTargetUsername),
			Password: v.GetString(KeyTargetPassword),
			SSLMode:  v.GetString(KeyTargetSSLMode),
			DSN:      v.GetString(KeyTargetDSN),
		},
		IncludeOptional: v.GetBool(KeyIncludeOptional),
		Entities:        splitList(v.GetStringSlice(KeyEntities)),
		DryRun:          v.GetBool(KeyDryRun),
		LogFile:         v.GetString(KeyLogFile),
		LogLevel:        v.GetString(KeyLogLevel),
	}

	var problems []string

	var err error
	if cfg.Source.Port, err = intSetting(v, KeySourcePort, 0); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Target.Port, err = intSetting(v, KeyTargetPort, 0); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.BatchSize, err = intSetting(v, KeyBatchSize, 1); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.ParamLimit, err = intSetting(v, KeyParamLimit, 0); err != nil {
		problems = append(problems, err.Error())
	}

	timeout := v.GetString(KeyConnectTimeout)
	if cfg.ConnectTimeout, err = time.ParseDuration(timeout); err != nil || cfg.ConnectTimeout < 0 {
		problems = append(problems, fmt.Sprintf("%s must be a non-negative duration, got %q", envNames[KeyConnectTimeout], timeout))
	}

	if missing := missingSettings(cfg.Source, sourceKeys); len(missing) > 0 {
		problems = append(problems, "missing source settings: "+strings.Join(missing, ", "))
	}
	if missing := missingSettings(cfg.Target, targetKeys); len(missing) > 0 {
		problems = append(problems, "missing target settings: "+strings.Join(missing, ", "))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

type sideKeys struct {
	driver, host, database, username, password string
}

var (
	sourceKeys = sideKeys{KeySourceDriver, KeySourceHost, KeySourceDatabase, KeySourceUsername, KeySourcePassword}
	targetKeys = sideKeys{KeyTargetDriver, KeyTargetHost, KeyTargetDatabase, KeyTargetUsername, KeyTargetPassword}
)

// missingSettings lists the environment variables a side still needs.
func missingSettings(d Database, k sideKeys) []string {
	var missing []string
	if d.Driver == "" {
		missing = append(missing, envNames[k.driver])
	}
	if d.DSN != "" {
		return missing
	}
	if d.Driver == "sqlite" {
		if d.Name == "" {
			missing = append(missing, envNames[k.database])
		}
		return missing
	}
	for key, val := range map[string]string{
		k.host: d.Host, k.database: d.Name, k.username: d.Username, k.password: d.Password,
	} {
		if val == "" {
			missing = append(missing, envNames[key])
		}
	}
	sort.Strings(missing)
	return missing
}

func intSetting(v *viper.Viper, key string, min int) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, fmt.Errorf("%s must be an integer >= %d, got %q", envNames[key], min, raw)
	}
	return n, nil
}

// splitList accepts both repeated values and comma-separated strings.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ConnString assembles the database/sql connection string for d.
func (d Database) ConnString() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}

	switch d.Driver {
	case "sqlserver", "mssql":
		q := url.Values{}
		q.Set("database", d.Name)
		q.Set("TrustServerCertificate", "true")
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(d.Username, d.Password),
			Host:     hostPort(d.Host, d.Port),
			RawQuery: q.Encode(),
		}
		return u.String(), nil

	case "postgres":
		q := url.Values{}
		if d.SSLMode != "" {
			q.Set("sslmode", d.SSLMode)
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(d.Username, d.Password),
			Host:     hostPort(d.Host, d.Port),
			Path:     "/" + d.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil

	case "mysql":
		mc := mysql.NewConfig()
		mc.User = d.Username
		mc.Passwd = d.Password
		mc.Net = "tcp"
		port := d.Port
		if port == 0 {
			port = 3306
		}
		mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(port))
		mc.DBName = d.Name
		mc.ParseTime = true
		return mc.FormatDSN(), nil

	case "oracle":
		port := d.Port
		if port == 0 {
			port = 1521
		}
		return go_ora.BuildUrl(d.Host, port, d.Name, d.Username, d.Password, nil), nil

	case "sqlite":
		return d.Name, nil

	default:
		return "", fmt.Errorf("unsupported driver %q", d.Driver)
	}
}

func hostPort(host string, port int) string {
	if port == 0 {
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
