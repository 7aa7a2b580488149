package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Usage is printed when the positional arguments are wrong.
const Usage = "Usage: wgimport [flags] <wg0.conf> http://<ip>:<port> USER PASSWORD"

// ErrUsage is returned when the positional argument count is not four.
var ErrUsage = errors.New("wrong number of arguments")

// DefaultAllowedIPs is the allowed_ips list sent for every imported client.
var DefaultAllowedIPs = []string{"10.123.0.0/24", "172.16.0.0/12"}

type Config struct {
	// Input
	ConfigPath string

	// Peer-management service
	BaseURL   string
	CreateURL string
	Username  string
	Password  string

	// Import behaviour
	AllowedIPs   []string
	SkipExisting bool
	StrictLogin  bool
	RememberMe   bool
	DryRun       bool

	// HTTP
	Timeout time.Duration

	// Logging
	LogLevel string
}

// LoadConfig resolves flags, environment and the four positional
// arguments. args excludes the program name.
func LoadConfig(args []string, output io.Writer) (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{}
	var allowedIPs string

	fs := flag.NewFlagSet("wgimport", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, Usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.CreateURL, "create-url", getEnv("WGIMPORT_CREATE_URL", ""), "Client creation endpoint (default <base-url>/new-client)")
	fs.StringVar(&allowedIPs, "allowed-ips", getEnv("WGIMPORT_ALLOWED_IPS", strings.Join(DefaultAllowedIPs, ",")), "Comma separated allowed_ips sent for every client")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", getEnvBool("WGIMPORT_SKIP_EXISTING", false), "Skip peers whose public key is already registered")
	fs.BoolVar(&cfg.StrictLogin, "strict-login", getEnvBool("WGIMPORT_STRICT_LOGIN", false), "Abort when the login is rejected")
	fs.BoolVar(&cfg.RememberMe, "remember-me", getEnvBool("WGIMPORT_REMEMBER_ME", false), "Ask the service for a long-lived session")
	fs.BoolVar(&cfg.DryRun, "dry-run", getEnvBool("WGIMPORT_DRY_RUN", false), "Print payloads without contacting the service")
	fs.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("WGIMPORT_TIMEOUT", 0), "Per-request HTTP timeout (0 disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("WGIMPORT_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() != 4 {
		return nil, ErrUsage
	}

	cfg.ConfigPath = fs.Arg(0)
	cfg.BaseURL = strings.TrimRight(fs.Arg(1), "/")
	cfg.Username = fs.Arg(2)
	cfg.Password = fs.Arg(3)
	cfg.AllowedIPs = splitList(allowedIPs)

	if cfg.CreateURL == "" {
		cfg.CreateURL = cfg.BaseURL + "/new-client"
	}

	// Validate required fields
	if err := validateURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if err := validateURL(cfg.CreateURL); err != nil {
		return nil, fmt.Errorf("invalid create URL: %w", err)
	}

	return cfg, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
