package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ontokit/vskit/backend"
)

// Config is the resolver configuration document: which backend answers
// which logical ontology key.
type Config struct {
	// DefaultResolver answers any query no other entry matches.
	DefaultResolver *backend.Binding `yaml:"default_resolver,omitempty"`

	// ResourceResolvers are matched by exact source_ontology value.
	ResourceResolvers map[string]backend.Binding `yaml:"resource_resolvers,omitempty"`

	// PrefixResolvers are matched by identifier prefix. Declaration order
	// is significant: it breaks ties between equal-length prefixes.
	PrefixResolvers PrefixBindings `yaml:"prefix_resolvers,omitempty"`
}

// PrefixBinding binds one identifier prefix to a backend.
type PrefixBinding struct {
	Prefix  string
	Binding backend.Binding
}

// PrefixBindings preserves the declaration order of the YAML mapping,
// which plain map decoding would lose.
type PrefixBindings []PrefixBinding

// UnmarshalYAML decodes a YAML mapping into an ordered slice.
func (p *PrefixBindings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("prefix_resolvers: expected a mapping, got %s", node.Tag)
	}
	out := make(PrefixBindings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var b backend.Binding
		if err := node.Content[i+1].Decode(&b); err != nil {
			return fmt.Errorf("prefix_resolvers[%s]: %w", node.Content[i].Value, err)
		}
		out = append(out, PrefixBinding{Prefix: node.Content[i].Value, Binding: b})
	}
	*p = out
	return nil
}

// MarshalYAML re-encodes the ordered slice as a mapping.
func (p PrefixBindings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, pb := range p {
		var key, value yaml.Node
		key.SetString(pb.Prefix)
		if err := value.Encode(pb.Binding); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &value)
	}
	return node, nil
}

// Validate checks that every binding names a method.
func (c *Config) Validate() error {
	check := func(where string, b backend.Binding) error {
		if b.Method == "" {
			return fmt.Errorf("%s: method is required", where)
		}
		return nil
	}
	if c.DefaultResolver != nil {
		if err := check("default_resolver", *c.DefaultResolver); err != nil {
			return err
		}
	}
	for key, b := range c.ResourceResolvers {
		if err := check("resource_resolvers."+key, b); err != nil {
			return err
		}
	}
	for _, pb := range c.PrefixResolvers {
		if err := check("prefix_resolvers."+pb.Prefix, pb.Binding); err != nil {
			return err
		}
	}
	return nil
}

// ParseConfig decodes and validates a resolver configuration document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse resolver config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses a resolver configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resolver config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
