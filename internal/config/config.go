package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIdentityURL  = "https://app.vssps.visualstudio.com/_apis/profile/profiles/me"
	DefaultAccountsURL  = "https://app.vssps.visualstudio.com/_apis/accounts"
	DefaultAPIVersion   = "6.0"
	DefaultTimeout      = 10 * time.Second
	DefaultProbeTimeout = 2 * time.Second
	DefaultTool         = "az"
	DefaultToolTimeout  = 30 * time.Second
	DefaultEnvFile      = ".env"
	DefaultLogLevel     = "info"

	// DefaultResource is the Azure DevOps application id that delegated
	// tokens are scoped to.
	DefaultResource = "499b84ac-1321-427f-aa17-267ca6975798"
)

// DefaultProbeHosts are the hosts checked for reachability before any HTTP call.
var DefaultProbeHosts = []string{"dev.azure.com", "app.vssps.visualstudio.com"}

// Config holds all configuration (CLI flags + config file).
type Config struct {
	ConfigFile   string        `arg:"--config" help:"path to config file (YAML)" yaml:"-"`
	EnvFile      string        `arg:"--env-file" help:"dotenv file loaded into the configuration snapshot [default: .env]" yaml:"env_file"`
	IdentityURL  string        `arg:"--identity-url" help:"profile endpoint used to resolve the caller" yaml:"identity_url"`
	AccountsURL  string        `arg:"--accounts-url" help:"accounts endpoint queried with the public alias" yaml:"accounts_url"`
	APIVersion   string        `arg:"--api-version" help:"api-version query parameter [default: 6.0]" yaml:"api_version"`
	Timeout      time.Duration `arg:"--timeout" help:"per-request HTTP timeout [default: 10s]" yaml:"timeout"`
	ProbeHosts   []string      `arg:"--probe-host,separate" help:"host to ping before the HTTP checks (repeatable)" yaml:"probe_hosts"`
	ProbeTimeout time.Duration `arg:"--probe-timeout" help:"reachability probe wait [default: 2s]" yaml:"probe_timeout"`
	Tool         string        `arg:"--tool" help:"Azure CLI executable [default: az]" yaml:"tool"`
	ToolTimeout  time.Duration `arg:"--tool-timeout" help:"timeout for each Azure CLI call [default: 30s]" yaml:"tool_timeout"`
	Resource     string        `arg:"--resource" help:"resource id delegated tokens are requested for" yaml:"resource"`
	LogLevel     string        `arg:"--log-level" help:"debug, info, warn or error [default: info]" yaml:"log_level"`
}

// Parse reads CLI flags, then overlays config file values.
// CLI flags take precedence over config file values.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	p, err := arg.NewParser(arg.Config{Program: "authcheck"}, c)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(args); err != nil {
		if err == arg.ErrHelp {
			p.WriteHelp(os.Stdout)
		}
		return nil, err
	}

	if c.ConfigFile != "" {
		if err := c.loadFile(c.ConfigFile); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()
	return c, nil
}

// loadFile reads a YAML config file. Values from the file are only applied
// if the corresponding CLI flag was not explicitly set.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	overlayString(&c.EnvFile, file.EnvFile)
	overlayString(&c.IdentityURL, file.IdentityURL)
	overlayString(&c.AccountsURL, file.AccountsURL)
	overlayString(&c.APIVersion, file.APIVersion)
	overlayString(&c.Tool, file.Tool)
	overlayString(&c.Resource, file.Resource)
	overlayString(&c.LogLevel, file.LogLevel)
	overlayDuration(&c.Timeout, file.Timeout)
	overlayDuration(&c.ProbeTimeout, file.ProbeTimeout)
	overlayDuration(&c.ToolTimeout, file.ToolTimeout)
	if len(c.ProbeHosts) == 0 && len(file.ProbeHosts) > 0 {
		c.ProbeHosts = file.ProbeHosts
	}
	return nil
}

// applyDefaults fills anything still unset after flags and file.
func (c *Config) applyDefaults() {
	overlayString(&c.EnvFile, DefaultEnvFile)
	overlayString(&c.IdentityURL, DefaultIdentityURL)
	overlayString(&c.AccountsURL, DefaultAccountsURL)
	overlayString(&c.APIVersion, DefaultAPIVersion)
	overlayString(&c.Tool, DefaultTool)
	overlayString(&c.Resource, DefaultResource)
	overlayString(&c.LogLevel, DefaultLogLevel)
	overlayDuration(&c.Timeout, DefaultTimeout)
	overlayDuration(&c.ProbeTimeout, DefaultProbeTimeout)
	overlayDuration(&c.ToolTimeout, DefaultToolTimeout)
	if len(c.ProbeHosts) == 0 {
		c.ProbeHosts = append([]string(nil), DefaultProbeHosts...)
	}
}

func overlayString(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 && v > 0 {
		*dst = v
	}
}
