package ratelimit

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Names of the built-in policies
const (
	PolicyAPI           = "api"
	PolicyAuth          = "auth"
	PolicyPasswordReset = "password_reset"
)

// AuthPolicy protects authentication endpoints: 10 requests per minute
func AuthPolicy() Policy {
	return Policy{Limit: 10, Window: 60 * time.Second}
}

// PasswordResetPolicy protects password reset: 3 requests per hour
func PasswordResetPolicy() Policy {
	return Policy{Limit: 3, Window: 3600 * time.Second}
}

// APIPolicy is the general API policy; the limit and window come from configuration
func APIPolicy(limit int, window time.Duration) Policy {
	return Policy{Limit: limit, Window: window}
}

/* Policies holds named policies. It starts with the three presets and can be
 * extended or overridden from a YAML file at startup; it is not modified afterwards.
 */
type Policies struct {
	byName map[string]Policy
}

// policyFile is the structure of the YAML policy file
type policyFile struct {
	Policies []policyConfig `yaml:"policies"`
}

type policyConfig struct {
	Name          string `yaml:"name"`
	Limit         int    `yaml:"limit"`
	WindowSeconds int    `yaml:"window_seconds"`
}

// DefaultPolicies returns the presets with the API policy built from configuration
func DefaultPolicies(apiLimit int, apiWindow time.Duration) *Policies {
	return &Policies{
		byName: map[string]Policy{
			PolicyAPI:           APIPolicy(apiLimit, apiWindow),
			PolicyAuth:          AuthPolicy(),
			PolicyPasswordReset: PasswordResetPolicy(),
		},
	}
}

// LoadFile reads a YAML policy file and merges it into p
func (p *Policies) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading policy file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing policy YAML: %w", err)
	}

	loaded := make(map[string]Policy, len(file.Policies))
	for _, pc := range file.Policies {
		if pc.Name == "" {
			return fmt.Errorf("validating policy: name cannot be empty")
		}
		if _, dup := loaded[pc.Name]; dup {
			return fmt.Errorf("validating policy: duplicate name %s", pc.Name)
		}
		policy := Policy{Limit: pc.Limit, Window: time.Duration(pc.WindowSeconds) * time.Second}
		if err := policy.Validate(); err != nil {
			return fmt.Errorf("validating policy %s: %w", pc.Name, err)
		}
		loaded[pc.Name] = policy
	}

	for name, policy := range loaded {
		p.byName[name] = policy
	}
	return nil
}

// Get returns a policy by name
func (p *Policies) Get(name string) (Policy, error) {
	policy, ok := p.byName[name]
	if !ok {
		return Policy{}, fmt.Errorf("policy not found: %s", name)
	}
	return policy, nil
}

// Names returns all policy names, sorted
func (p *Policies) Names() []string {
	names := make([]string, 0, len(p.byName))
	for name := range p.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
