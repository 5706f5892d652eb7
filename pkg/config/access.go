package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

// ErrKeyDenied is returned when a window asks for a store key outside the
// access policy.
var ErrKeyDenied = errors.New("store key not accessible")

// AccessPolicy decides which dotted store keys the windows may reach through
// the CallStore passthrough. Patterns use '.' as the separator, so
// "keybinds.*" matches "keybinds.vanish" but not "keybinds.vanish.keybind";
// "keybinds.**" matches both.
type AccessPolicy struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewAccessPolicy compiles allowed and denied key patterns.
// An empty allowed list allows every key not explicitly denied.
func NewAccessPolicy(allowed, denied []string) (*AccessPolicy, error) {
	p := &AccessPolicy{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		p.allowedPatterns = append(p.allowedPatterns, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		p.deniedPatterns = append(p.deniedPatterns, g)
	}

	return p, nil
}

// IsAllowed returns true if key is reachable under the policy.
func (p *AccessPolicy) IsAllowed(key string) bool {
	if p == nil {
		return true
	}

	// Denied patterns take precedence
	for _, pattern := range p.deniedPatterns {
		if pattern.Match(key) {
			return false
		}
	}

	if len(p.allowedPatterns) == 0 {
		return true
	}

	for _, pattern := range p.allowedPatterns {
		if pattern.Match(key) {
			return true
		}
	}

	return false
}

// Check returns ErrKeyDenied wrapped with key when the key is not allowed.
func (p *AccessPolicy) Check(key string) error {
	if !p.IsAllowed(key) {
		return fmt.Errorf("%w: %s", ErrKeyDenied, key)
	}
	return nil
}
