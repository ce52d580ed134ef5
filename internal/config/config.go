package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the dashboard service.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	MonitoringEnabled  bool
	MonitoringEndpoint string
	MonitoringTimeout  time.Duration

	SLAMasterEnabled  bool
	SLAMasterEndpoint string
	SLAMasterTimeout  time.Duration
	SLAMasterPageSize int

	ShippingEnabled  bool
	ShippingEndpoint string
	ShippingTimeout  time.Duration

	RefreshInterval time.Duration
	IndexTTL        time.Duration

	MonitorPerPage  int
	ShippingPerPage int

	ReportSQLitePath   string
	ReportArchiveLimit int
}

// FromEnv loads configuration from environment variables with sensible
// defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()
	loadSecretsDefaultsFromFile()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 20)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,

		MonitoringEnabled:  getEnvBool("APP_MONITORING_ENABLED", true),
		MonitoringEndpoint: getEnv("APP_MONITORING_ENDPOINT", "http://127.0.0.1:9001/api/v1"),
		MonitoringTimeout:  time.Duration(getEnvInt("APP_MONITORING_TIMEOUT_SEC", 10)) * time.Second,

		SLAMasterEnabled:  getEnvBool("APP_SLA_MASTER_ENABLED", true),
		SLAMasterEndpoint: getEnv("APP_SLA_MASTER_ENDPOINT", "http://127.0.0.1:9002/api/v1"),
		SLAMasterTimeout:  time.Duration(getEnvInt("APP_SLA_MASTER_TIMEOUT_SEC", 15)) * time.Second,
		SLAMasterPageSize: getEnvInt("APP_SLA_MASTER_PAGE_SIZE", 100),

		ShippingEnabled:  getEnvBool("APP_SHIPPING_ENABLED", false),
		ShippingEndpoint: getEnv("APP_SHIPPING_ENDPOINT", "http://127.0.0.1:9003/api/v1"),
		ShippingTimeout:  time.Duration(getEnvInt("APP_SHIPPING_TIMEOUT_SEC", 10)) * time.Second,

		RefreshInterval: time.Duration(getEnvInt("APP_REFRESH_INTERVAL_SEC", 300)) * time.Second,
		IndexTTL:        time.Duration(getEnvInt("APP_INDEX_TTL_SEC", 900)) * time.Second,

		MonitorPerPage:  getEnvInt("APP_MONITOR_PER_PAGE", 20),
		ShippingPerPage: getEnvInt("APP_SHIPPING_PER_PAGE", 5),

		ReportSQLitePath:   getEnv("APP_REPORT_SQLITE_PATH", ""),
		ReportArchiveLimit: getEnvInt("APP_REPORT_ARCHIVE_LIMIT", 24),
	}
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./sla-monitor-ui.env",
		"/etc/default/sla-monitor-ui",
	}

	for _, candidate := range bootstrapCandidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}
		_ = applyEnvDefaultsFromFile(abs)
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/sla-monitor-ui/config.env")

	for _, candidate := range candidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}

		if err := applyEnvDefaultsFromFile(abs); err == nil {
			return
		}
	}
}

func loadSecretsDefaultsFromFile() {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "app-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, "/etc/sla-monitor-ui/secrets.env")
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := applyEnvDefaultsFromFile(candidate); err == nil {
			return
		}
	}
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}

	return scanner.Err()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}
