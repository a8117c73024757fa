package policy

import (
	"context"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	TimeoutSec          int  `json:"timeoutSec,omitempty" yaml:"timeoutSec,omitempty"`
	RequireRejectReason bool `json:"requireRejectReason,omitempty" yaml:"requireRejectReason,omitempty"`
	ApproveOnTimeout    bool `json:"approveOnTimeout,omitempty" yaml:"approveOnTimeout,omitempty"`
	MaxRevisions        int  `json:"maxRevisions,omitempty" yaml:"maxRevisions,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		TimeoutSec:          int(p.Timeout / time.Second),
		RequireRejectReason: p.RequireRejectReason,
		ApproveOnTimeout:    p.ApproveOnTimeout,
		MaxRevisions:        p.MaxRevisions,
	}
}

// FromConfig converts a stored Config back to a runtime Policy. Zero fields
// inherit the package defaults.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return Default()
	}
	ret := &Policy{
		Timeout:             time.Duration(c.TimeoutSec) * time.Second,
		RequireRejectReason: c.RequireRejectReason,
		ApproveOnTimeout:    c.ApproveOnTimeout,
		MaxRevisions:        c.MaxRevisions,
	}
	if ret.Timeout == 0 {
		ret.Timeout = DefaultTimeout
	}
	if ret.MaxRevisions == 0 {
		ret.MaxRevisions = DefaultMaxRevisions
	}
	return ret
}

// Load reads a YAML policy config from the supplied URL (file path, mem://,
// or any scheme the afs service understands).
func Load(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}
