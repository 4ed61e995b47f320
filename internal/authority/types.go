// Package authority implements the capability gate that stands between a
// built Command and the Executor. An AuthorityToken names what its holder
// may do; Check decides whether a given Command falls inside that grant.
// Levels do not form a subset chain — parameterized_tools does not imply
// tools_only — so a token only ever authorizes exactly what it names.
package authority

// AuthorityLevel is the coarse grant a token carries. Levels are checked
// by exact membership, never by rank comparison: tools_only is not a
// superset of observe, nor a subset of parameterized_tools.
type AuthorityLevel string

const (
	LevelObserve            AuthorityLevel = "observe"
	LevelToolsOnly          AuthorityLevel = "tools_only"
	LevelParameterizedTools AuthorityLevel = "parameterized_tools"
	LevelScopedCommands     AuthorityLevel = "scoped_commands"
)

// NetworkPolicy records what network access a token declares for the
// commands it permits. It is carried on the token only: Enforcer.Check
// does not consult it.
type NetworkPolicy string

const (
	NetworkDeny      NetworkPolicy = "deny"
	NetworkLocalhost NetworkPolicy = "localhost"
	NetworkAllowlist NetworkPolicy = "allowlist"
)

// AuthorityToken is the capability envelope scoped to one project. It is
// cheap to copy and carries no resource of its own; callers treat it as
// immutable for its lifetime.
type AuthorityToken struct {
	// ProjectID is the 32-byte hash of the project root path (see
	// HashProjectRoot). It is the identifier audit events carry, never
	// the raw filesystem path.
	ProjectID [32]byte

	Level AuthorityLevel

	// Expiration is a Unix timestamp in seconds; 0 means session-only
	// (never expires).
	Expiration int64

	AllowedTools []string
	AllowedBins  []string

	// FsRoot is the canonical project root a Command's Cwd must fall
	// under. The enforcer performs a byte-prefix comparison against this
	// value and does no canonicalisation of its own — see DESIGN.md for
	// why canonicalisation is pinned to token construction instead. A
	// Command's Cwd is compared exactly as the caller supplied it.
	FsRoot string

	Network NetworkPolicy
}

// DenialReason tags why Check refused a Command. These are the atoms the
// audit log records and the only vocabulary a denial message may use to
// name the rule that fired.
type DenialReason string

const (
	DenyNoAuthorityLoaded      DenialReason = "no_authority_loaded"
	DenyToolNotInAllowList     DenialReason = "tool_not_in_allow_list"
	DenyBinaryNotInAllowList   DenialReason = "binary_not_in_allow_list"
	DenyParametersOutOfBounds  DenialReason = "parameters_out_of_bounds"
	DenyCwdOutsideFsRoot       DenialReason = "cwd_outside_fs_root"
	DenyAuthorityExpired       DenialReason = "authority_expired"
	DenyInsufficientLevel      DenialReason = "insufficient_level"
	DenySchemaValidationFailed DenialReason = "schema_validation_failed"
	DenyNetworkPolicyViolation DenialReason = "network_policy_violation"
)

// Decision is the Enforcer's verdict on one Command. Reason and Detail
// are the zero value when Allowed is true.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	Detail  string
}
