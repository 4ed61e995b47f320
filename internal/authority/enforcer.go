package authority

import (
	"strings"
	"time"

	"github.com/wardhq/ward/internal/audit"
	"github.com/wardhq/ward/internal/command"
)

// Enforcer is the single authority gate: it decides whether a token's
// grant covers a built Command. It holds no per-request state itself —
// every Check call takes the token fresh — so one Enforcer can serve
// concurrent requests scoped to different projects. Check is the first
// of two gates a Command passes through: the Executor re-checks the same
// token immediately before spawning, so a Command that cleared Check can
// never run with a grant that has since changed without also being
// re-validated at execution time (spec invariant I4).
type Enforcer struct {
	audit audit.Writer
	now   func() time.Time
}

// NewEnforcer builds an Enforcer. w receives a denial event for every
// refused Command (invariant I3: denied always accompanies an audit
// event); a nil w is replaced by a no-op writer.
func NewEnforcer(w audit.Writer) *Enforcer {
	if w == nil {
		w = audit.NewLogWriter(nil)
	}
	return &Enforcer{audit: w, now: time.Now}
}

// Check runs the ordered rules from spec.md §4.4 against cmd, short-
// circuiting on the first rule that denies. A nil token denies with
// no_authority_loaded rather than panicking — "nothing in the core
// silently degrades" (spec.md §7): an absent token is itself a failure
// that denies execution.
func (e *Enforcer) Check(token *AuthorityToken, cmd *command.Command) Decision {
	decision := e.decide(token, cmd)
	if !decision.Allowed {
		projectID := [32]byte{}
		if token != nil {
			projectID = token.ProjectID
		}
		event := audit.NewEvent(cmd.ToolID, ProjectIDHex(projectID), "authority", "deny")
		event.DenialReason = string(decision.Reason)
		event.Detail = decision.Detail
		e.audit.Write(event)
	}
	return decision
}

func (e *Enforcer) decide(token *AuthorityToken, cmd *command.Command) Decision {
	if token == nil {
		return Decision{Reason: DenyNoAuthorityLoaded, Detail: "no authority token loaded"}
	}

	// 1. observe confers no execute rights whatsoever.
	if token.Level == LevelObserve {
		return Decision{Reason: DenyInsufficientLevel, Detail: "observe confers no execute rights"}
	}

	// 2. tool_id must be named in the allow-list. An empty allow-list
	// denies every tool — there is no implicit wildcard.
	if !contains(token.AllowedTools, cmd.ToolID) {
		return Decision{Reason: DenyToolNotInAllowList, Detail: cmd.ToolID}
	}

	// 3. binary must be named in the allow-list, by string equality; the
	// schema loader is responsible for resolving it to a concrete path
	// before it ever reaches the enforcer.
	if !contains(token.AllowedBins, cmd.Binary) {
		return Decision{Reason: DenyBinaryNotInAllowList, Detail: cmd.Binary}
	}

	// 4. cwd must have fs_root as a byte prefix. No canonicalisation
	// happens here — see DESIGN.md for why that responsibility sits with
	// the token constructor instead; the command builder passes cwd
	// through unchanged.
	if !withinFsRoot(cmd.Cwd, token.FsRoot) {
		return Decision{Reason: DenyCwdOutsideFsRoot, Detail: cmd.Cwd}
	}

	// 5. expiration, if set, is checked against wall time.
	if token.Expiration != 0 && e.now().Unix() > token.Expiration {
		return Decision{Reason: DenyAuthorityExpired}
	}

	// 6. tools_only forbids any parameterisation at all.
	if token.Level == LevelToolsOnly && len(cmd.Args) > 0 {
		return Decision{Reason: DenyInsufficientLevel, Detail: "tools_only forbids parameterised arguments"}
	}

	// 7. otherwise: allowed.
	return Decision{Allowed: true}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// withinFsRoot reports whether cwd falls under fsRoot by exact byte
// prefix, with a path-separator boundary so "/home/projectX" is never
// mistaken for a child of "/home/project". An empty fsRoot imposes no
// constraint (an unconfigured token already denies earlier, at the tool
// or binary allow-list check, in any realistic deployment).
func withinFsRoot(cwd, fsRoot string) bool {
	if fsRoot == "" {
		return true
	}
	if cwd == fsRoot {
		return true
	}
	root := fsRoot
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return strings.HasPrefix(cwd, root)
}
