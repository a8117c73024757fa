package hitl

import (
	"context"
	"fmt"

	"github.com/viant/hitl/model"
	"github.com/viant/hitl/policy"
	"github.com/viant/hitl/service/messaging"
	mfs "github.com/viant/hitl/service/messaging/fs"
	mmemory "github.com/viant/hitl/service/messaging/memory"
	"github.com/viant/hitl/service/store"
	sfs "github.com/viant/hitl/service/store/fs"
	smemory "github.com/viant/hitl/service/store/memory"

	"github.com/viant/afs"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from JSON or YAML. The zero-value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	Policy policy.Config `json:"policy" yaml:"policy"`
	Store  BackendConfig `json:"store" yaml:"store"`
	Queue  BackendConfig `json:"queue" yaml:"queue"`
}

// BackendConfig selects a storage vendor for the store or the event queue.
type BackendConfig struct {
	Vendor  messaging.Vendor `json:"vendor" yaml:"vendor"`
	BaseURL string           `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// DefaultConfig returns a Config matching the constructor defaults.
func DefaultConfig() *Config {
	return &Config{
		Policy: *policy.ToConfig(policy.Default()),
		Store:  BackendConfig{Vendor: messaging.VendorMemory},
		Queue:  BackendConfig{Vendor: messaging.VendorMemory},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	for _, backend := range []BackendConfig{c.Store, c.Queue} {
		switch backend.Vendor {
		case "", messaging.VendorMemory:
		case messaging.VendorFS:
			if backend.BaseURL == "" {
				return fmt.Errorf("fs backend requires baseURL")
			}
		default:
			return fmt.Errorf("unsupported vendor: %v", backend.Vendor)
		}
	}
	return nil
}

// NewFromConfig assembles an engine from a declarative configuration.
func NewFromConfig(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	var backends []Option
	backends = append(backends, WithPolicy(policy.FromConfig(&config.Policy)))

	if config.Store.Vendor == messaging.VendorFS {
		storage, err := sfs.New(ctx, config.Store.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create fs store: %w", err)
		}
		backends = append(backends, WithStore(storage))
	} else {
		backends = append(backends, WithStore(store.Service(smemory.New())))
	}

	if config.Queue.Vendor == messaging.VendorFS {
		queueConfig := mfs.DefaultConfig()
		queueConfig.BasePath = config.Queue.BaseURL
		queue, err := mfs.NewQueue[model.Event](afs.New(), queueConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create fs queue: %w", err)
		}
		backends = append(backends, WithEventQueue(queue))
	} else {
		backends = append(backends, WithEventQueue(messaging.Queue[model.Event](mmemory.NewQueue[model.Event](mmemory.DefaultConfig()))))
	}
	return New(append(backends, options...)...), nil
}
