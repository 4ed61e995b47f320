package wardcfg

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wardhq/ward/internal/authority"
)

// LoadFile reads an AuthorityDocument from path and converts it to an
// AuthorityToken bound to projectRoot. A missing file is not an error: it
// yields the observe-only default (spec.md §6, "Absence of the file
// yields a default observe-level token bound to the project root") — the
// same fail-safe posture StaticAuthenticator's "accept but don't trust"
// stance covers on the authentication side of this service's teacher.
// "." in the document's fs_root means projectRoot itself.
func LoadFile(path, projectRoot string) (authority.AuthorityToken, error) {
	canonicalRoot, err := canonicalize(projectRoot)
	if err != nil {
		return authority.AuthorityToken{}, err
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultToken(canonicalRoot), nil
	}
	if err != nil {
		return authority.AuthorityToken{}, err
	}

	var doc AuthorityDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return authority.AuthorityToken{}, &MalformedError{Cause: err}
	}

	root := canonicalRoot
	if doc.FsRoot != "" && doc.FsRoot != "." {
		root, err = canonicalize(doc.FsRoot)
		if err != nil {
			return authority.AuthorityToken{}, &MalformedError{Cause: err}
		}
	}

	return doc.ToToken(root)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// DefaultToken is the token used when no authority document is
// configured: observe only, no capability to build or run anything, but
// still bound to root so ProjectID is meaningful in audit events.
func DefaultToken(root string) authority.AuthorityToken {
	return authority.AuthorityToken{
		ProjectID: authority.HashProjectRoot(root),
		Level:     authority.LevelObserve,
		FsRoot:    root,
		Network:   authority.NetworkDeny,
	}
}
