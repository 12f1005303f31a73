package publishers

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Publisher types accepted in the publishers file.
const (
	TypeHTTP   = "http"
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
)

const (
	defaultHTTPMethod  = "POST"
	defaultHTTPTimeout = 5
)

// Config is one entry of the publishers file. Exactly the block matching Type is used.
type Config struct {
	ID      string        `json:"id" yaml:"id"`
	Type    string        `json:"type" yaml:"type"`
	Enabled *bool         `json:"enabled,omitempty" yaml:"enabled"`
	HTTP    *HTTPConfig   `json:"http,omitempty" yaml:"http"`
	SQS     *SQSConfig    `json:"sqs,omitempty" yaml:"sqs"`
	SNS     *SNSConfig    `json:"sns,omitempty" yaml:"sns"`
	PubSub  *PubSubConfig `json:"pubsub,omitempty" yaml:"pubsub"`
}

// HTTPConfig posts events to a webhook.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSConfig is shared by the SQS and SNS blocks. Without static keys the default
// credential chain is used; Endpoint targets LocalStack and similar.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

type SQSConfig struct {
	AWSConfig `yaml:",inline"`
	QueueURL  string `json:"uri" yaml:"uri"`
}

type SNSConfig struct {
	AWSConfig `yaml:",inline"`
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
}

// PubSubConfig targets a Pub/Sub topic. A non-empty Endpoint means an emulator
// reached without authentication.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

type file struct {
	Publishers []Config `json:"publishers" yaml:"publishers"`
}

// LoadFile reads and validates every entry of a YAML or JSON publishers file.
// Unknown keys are rejected so typos do not silently disable a sink.
func LoadFile(path string) ([]Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	f, err := decodeFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(f.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	seen := make(map[string]struct{}, len(f.Publishers))
	out := make([]Config, 0, len(f.Publishers))
	for i, cfg := range f.Publishers {
		cfg.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := seen[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: duplicate id %q", i, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}
		out = append(out, cfg)
	}
	return out, nil
}

func decodeFile(raw []byte, ext string) (file, error) {
	var f file
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return file{}, fmt.Errorf("decode json publishers: %w", err)
		}
	case ".yaml", ".yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return file{}, fmt.Errorf("decode yaml publishers: %w", err)
		}
	default:
		return file{}, fmt.Errorf("publishers file extension %q not supported (expected .yaml, .yml or .json)", ext)
	}
	return f, nil
}

// Enabled filters cfgs down to the entries that are switched on.
func Enabled(cfgs []Config) []Config {
	var out []Config
	for _, cfg := range cfgs {
		if cfg.IsEnabled() {
			out = append(out, cfg)
		}
	}
	return out
}

// IsEnabled defaults to true when the entry does not say otherwise.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *Config) normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	if c.HTTP != nil {
		c.HTTP.normalize()
	}
	if c.SQS != nil {
		c.SQS.AWSConfig.normalize()
		c.SQS.QueueURL = strings.TrimSpace(c.SQS.QueueURL)
	}
	if c.SNS != nil {
		c.SNS.AWSConfig.normalize()
		c.SNS.TopicARN = strings.TrimSpace(c.SNS.TopicARN)
	}
	if c.PubSub != nil {
		p := c.PubSub
		p.ProjectID = strings.TrimSpace(p.ProjectID)
		p.Topic = strings.TrimSpace(p.Topic)
		p.CredentialsFile = strings.TrimSpace(p.CredentialsFile)
		p.Endpoint = strings.TrimSpace(p.Endpoint)
	}
}

func (c Config) validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}

	var err error
	switch c.Type {
	case TypeHTTP:
		if c.HTTP == nil {
			return fmt.Errorf("publisher %q: http block is required", c.ID)
		}
		err = c.HTTP.validate()
	case TypeSQS:
		if c.SQS == nil {
			return fmt.Errorf("publisher %q: sqs block is required", c.ID)
		}
		err = c.SQS.validate()
	case TypeSNS:
		if c.SNS == nil {
			return fmt.Errorf("publisher %q: sns block is required", c.ID)
		}
		err = c.SNS.validate()
	case TypePubSub:
		if c.PubSub == nil {
			return fmt.Errorf("publisher %q: pubsub block is required", c.ID)
		}
		err = c.PubSub.validate()
	case "":
		return fmt.Errorf("publisher %q: type is required", c.ID)
	default:
		return fmt.Errorf("publisher %q: unknown type %q", c.ID, c.Type)
	}
	if err != nil {
		return fmt.Errorf("publisher %q: %w", c.ID, err)
	}
	return nil
}

func (h *HTTPConfig) normalize() {
	h.URL = strings.TrimSpace(h.URL)
	h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
	if h.Method == "" {
		h.Method = defaultHTTPMethod
	}
	if h.TimeoutSeconds <= 0 {
		h.TimeoutSeconds = defaultHTTPTimeout
	}
	headers := make(map[string]string, len(h.Headers))
	for k, v := range h.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	h.Headers = headers
}

func (h HTTPConfig) timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

func (h HTTPConfig) validate() error {
	if h.URL == "" {
		return errors.New("http.url is required")
	}
	u, err := url.Parse(h.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("http.url %q must be an absolute http(s) URL", h.URL)
	}
	return nil
}

func (a *AWSConfig) normalize() {
	a.Region = strings.TrimSpace(a.Region)
	a.Endpoint = strings.TrimSpace(a.Endpoint)
	a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
	a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
}

func (a AWSConfig) validate(block string) error {
	if a.Region == "" {
		return fmt.Errorf("%s.region is required", block)
	}
	if (a.AccessKeyID == "") != (a.SecretAccessKey == "") {
		return fmt.Errorf("%s.access_key_id and %s.secret_access_key must be set together", block, block)
	}
	return nil
}

func (s SQSConfig) validate() error {
	if s.QueueURL == "" {
		return errors.New("sqs.uri is required")
	}
	return s.AWSConfig.validate(TypeSQS)
}

func (s SNSConfig) validate() error {
	if !strings.HasPrefix(s.TopicARN, "arn:") {
		return errors.New("sns.topic_arn must be a topic ARN")
	}
	return s.AWSConfig.validate(TypeSNS)
}

func (p PubSubConfig) validate() error {
	if p.ProjectID == "" || p.Topic == "" {
		return errors.New("pubsub.project_id and pubsub.topic are required")
	}
	return nil
}
