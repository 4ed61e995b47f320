// Package wardcfg loads the operator-facing authority configuration
// document (spec.md §6) that produces the AuthorityToken the Enforcer
// checks every Command against: a file-based default for local/dev use
// and a Postgres-backed, cache-fronted lookup for multi-tenant
// deployments, mirroring the tool_guard service's project-store split
// between its static and Postgres authenticators.
package wardcfg

import (
	"fmt"

	"github.com/wardhq/ward/internal/authority"
)

// AuthorityDocument is the JSON/YAML shape an authority token is declared
// in on disk or in a project row, per spec.md §6. FsRoot of "." means the
// project root the loader was invoked against.
type AuthorityDocument struct {
	AuthorityLevel    string   `yaml:"authority_level" json:"authority_level"`
	AllowedTools      []string `yaml:"allowed_tools" json:"allowed_tools"`
	AllowedBins       []string `yaml:"allowed_bins" json:"allowed_bins"`
	FsRoot            string   `yaml:"fs_root" json:"fs_root"`
	Network           string   `yaml:"network" json:"network"`
	ExpirationSeconds int64    `yaml:"expiration_seconds" json:"expiration_seconds"`
}

// MalformedError means the document could not be parsed into its typed
// shape at all (spec.md §6 ConfigMalformed).
type MalformedError struct{ Cause error }

func (e *MalformedError) Error() string { return fmt.Sprintf("wardcfg: config malformed: %v", e.Cause) }
func (e *MalformedError) Unwrap() error { return e.Cause }

// InvalidLevelError means the document parsed but named an
// authority_level this build does not recognize (spec.md §6 InvalidLevel).
type InvalidLevelError struct{ Level string }

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("wardcfg: invalid authority_level %q", e.Level)
}

// InvalidNetworkPolicyError means the document parsed but named a
// network policy this build does not recognize (spec.md §6
// InvalidNetworkPolicy).
type InvalidNetworkPolicyError struct{ Policy string }

func (e *InvalidNetworkPolicyError) Error() string {
	return fmt.Sprintf("wardcfg: invalid network policy %q", e.Policy)
}

var validLevels = map[string]authority.AuthorityLevel{
	"observe":             authority.LevelObserve,
	"tools_only":          authority.LevelToolsOnly,
	"parameterized_tools": authority.LevelParameterizedTools,
	"scoped_commands":     authority.LevelScopedCommands,
}

var validNetworks = map[string]authority.NetworkPolicy{
	"deny":      authority.NetworkDeny,
	"localhost": authority.NetworkLocalhost,
	"allowlist": authority.NetworkAllowlist,
}

// ToToken converts a decoded document into an authority.AuthorityToken.
// canonicalRoot is the already-resolved (filepath.Abs + filepath.Clean'd)
// project root the caller resolved the document's "." against;
// canonicalisation happens once, here, at token construction — spec.md
// §9's path-canonicalisation open question, resolved as approach (a):
// canonicalise at the boundary, never inside the enforcer.
func (d AuthorityDocument) ToToken(canonicalRoot string) (authority.AuthorityToken, error) {
	level, ok := validLevels[d.AuthorityLevel]
	if !ok {
		return authority.AuthorityToken{}, &InvalidLevelError{Level: d.AuthorityLevel}
	}

	network := authority.NetworkDeny
	if d.Network != "" {
		network, ok = validNetworks[d.Network]
		if !ok {
			return authority.AuthorityToken{}, &InvalidNetworkPolicyError{Policy: d.Network}
		}
	}

	return authority.AuthorityToken{
		ProjectID:    authority.HashProjectRoot(canonicalRoot),
		Level:        level,
		Expiration:   d.ExpirationSeconds,
		AllowedTools: d.AllowedTools,
		AllowedBins:  d.AllowedBins,
		FsRoot:       canonicalRoot,
		Network:      network,
	}, nil
}
