package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Topic        string           `yaml:"topic"`
	Journals     []string         `yaml:"journals"`
	Schedule     string           `yaml:"schedule"`
	RunOnStart   bool             `yaml:"run_on_start"`
	LookbackDays int              `yaml:"lookback_days"`
	MaxResults   int              `yaml:"max_results"`
	PubTypeLang  string           `yaml:"pubtype_lang"`
	State        StateConfig      `yaml:"state"`
	PubMed       PubMedConfig     `yaml:"pubmed"`
	Summarizer   SummarizerConfig `yaml:"summarizer"`
	Mail         MailConfig       `yaml:"mail"`
}

type StateConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type PubMedConfig struct {
	Email  string `yaml:"email"`
	APIKey string `yaml:"api_key"`
}

type SummarizerConfig struct {
	Model         string   `yaml:"model"`
	APIKey        string   `yaml:"api_key"`
	Temperature   float64  `yaml:"temperature"`
	CallInterval  Duration `yaml:"call_interval"`
	SanitizeFacts bool     `yaml:"sanitize_facts"`
}

// Duration wraps time.Duration so YAML values like "300ms" decode directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type MailConfig struct {
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	From      string `yaml:"from"`
	Password  string `yaml:"password"`
	To        string `yaml:"to"`
	Recipient string `yaml:"recipient"`
	BccMode   bool   `yaml:"bcc_mode"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Topic == "" {
		cfg.Topic = "新着文献"
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 8 * * *"
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = 2
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 200
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "sent_pmids.json"
	}
	if cfg.State.RetentionDays == 0 {
		cfg.State.RetentionDays = 90
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = "gemini-2.5-flash"
	}
	if cfg.Summarizer.Temperature == 0 {
		cfg.Summarizer.Temperature = 0.2
	}
	if cfg.Summarizer.CallInterval == 0 {
		cfg.Summarizer.CallInterval = Duration(300 * time.Millisecond)
	}
	if cfg.Mail.SMTPHost == "" {
		cfg.Mail.SMTPHost = "smtp.gmail.com"
	}
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 465
	}
	if cfg.PubMed.Email == "" {
		cfg.PubMed.Email = cfg.Mail.From
	}
}

func validate(cfg *Config) error {
	if len(cfg.Journals) == 0 {
		return fmt.Errorf("config: journals is required (list the journal names to monitor)")
	}
	for _, j := range cfg.Journals {
		if strings.TrimSpace(j) == "" {
			return fmt.Errorf("config: journals contains an empty entry")
		}
	}
	if cfg.Summarizer.APIKey == "" {
		return fmt.Errorf("config: summarizer.api_key is required (set GEMINI_API_KEY env var)")
	}
	if cfg.Mail.From == "" {
		return fmt.Errorf("config: mail.from is required (set GMAIL_ADDRESS env var)")
	}
	if cfg.Mail.Password == "" {
		return fmt.Errorf("config: mail.password is required (set GMAIL_APP_PASSWORD env var)")
	}
	if cfg.LookbackDays < 1 {
		return fmt.Errorf("config: lookback_days must be at least 1")
	}
	if cfg.State.RetentionDays < 1 {
		return fmt.Errorf("config: state.retention_days must be at least 1")
	}
	return nil
}

// Load reads the config file, expands environment variables, applies defaults,
// and validates the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
