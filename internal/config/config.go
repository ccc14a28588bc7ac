// Package config loads the run configuration of a report.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile   = "config.yaml"
	DefaultManifestFile = "blockers.yaml"
	DefaultEmailSubject = "Jenkins Job Status Report"

	envPrefix = "JEEVES"
)

// Config is the immutable set of options read at the start of a run.
type Config struct {
	JenkinsURL     string `mapstructure:"jenkins_url"`
	Username       string `mapstructure:"username"`
	APIToken       string `mapstructure:"api_token"`
	SearchField    string `mapstructure:"job_search_field"`
	BugzillaURL    string `mapstructure:"bugzilla_url"`
	BugzillaAPIKey string `mapstructure:"bugzilla_api_key"`
	JiraURL        string `mapstructure:"jira_url"`
	JiraToken      string `mapstructure:"jira_token"`
	Certificate    string `mapstructure:"certificate"`
	SMTPHost       string `mapstructure:"smtp_host"`
	EmailSubject   string `mapstructure:"email_subject"`
	EmailTo        string `mapstructure:"email_to"`
	Manifest       string `mapstructure:"blockers"`

	Publish Publish `mapstructure:"publish"`
}

// Publish holds the object storage settings used by --publish.
type Publish struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// NewViper returns a viper instance with the defaults and environment
// binding used for report configuration.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("email_subject", DefaultEmailSubject)
	v.SetDefault("blockers", DefaultManifestFile)
	v.SetDefault("publish.region", "us-east-1")
	v.SetDefault("publish.prefix", "jeeves")

	// AutomaticEnv only applies to keys viper already knows about.
	for _, k := range []string{
		"jenkins_url", "username", "api_token", "job_search_field",
		"bugzilla_url", "bugzilla_api_key", "jira_url", "jira_token",
		"certificate", "smtp_host", "email_to", "publish.bucket",
	} {
		v.SetDefault(k, "")
	}
	return v
}

// Load reads the YAML file at path into a validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "error loading configuration data from %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration data from %s", path)
	}
	// search_field is the short form of job_search_field.
	if cfg.SearchField == "" {
		cfg.SearchField = v.GetString("search_field")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.JenkinsURL = strings.TrimSuffix(c.JenkinsURL, "/")
	c.BugzillaURL = strings.TrimSuffix(c.BugzillaURL, "/")
	c.JiraURL = strings.TrimSuffix(c.JiraURL, "/")
}

// Validate returns an error naming every required option that is missing.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"jenkins_url", c.JenkinsURL},
		{"job_search_field", c.SearchField},
		{"bugzilla_url", c.BugzillaURL},
		{"jira_url", c.JiraURL},
		{"smtp_host", c.SMTPHost},
		{"email_to", c.EmailTo},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
