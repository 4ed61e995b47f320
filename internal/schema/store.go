package schema

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Store is the in-memory mapping of tool-id to ToolSchema. Store never
// mutates a stored schema in place; a successful Load atomically replaces
// the prior entry for the same ID.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]*ToolSchema
	logger  *zap.Logger
}

// NewStore creates an empty SchemaStore.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		schemas: make(map[string]*ToolSchema),
		logger:  logger,
	}
}

// Load parses raw, validates it, and — on success — atomically installs it
// in the store. A version downgrade for an already-present tool id is
// rejected and leaves the store unchanged (I5).
func (s *Store) Load(raw []byte) error {
	decoded, err := decodeDocument(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.schemas[decoded.ID]; ok {
		if decoded.Version <= existing.Version {
			return &VersionDowngradeError{
				ToolID:         decoded.ID,
				StoredVersion:  existing.Version,
				OfferedVersion: decoded.Version,
			}
		}
	}

	s.schemas[decoded.ID] = decoded
	s.logger.Info("schema loaded",
		zap.String("tool_id", decoded.ID),
		zap.Uint32("version", decoded.Version),
		zap.String("risk", string(decoded.Risk)),
	)
	return nil
}

// Get returns the schema for toolID, if any.
func (s *Store) Get(toolID string) (*ToolSchema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schemas[toolID]
	return sc, ok
}

// Count returns the number of distinct tool ids currently stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schemas)
}

// IDs returns a snapshot of every loaded tool id, for manifest reporting.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.schemas))
	for id := range s.schemas {
		ids = append(ids, id)
	}
	return ids
}

// LoadDir loads every *.json file in dir into the store. Files are read and
// decoded concurrently — a bounded worker pool, one goroutine per file, the
// way engine.go fans out one goroutine per evaluator — but the final Load
// call for each file still goes through the store's own mutex, so the
// version-monotonicity invariant holds regardless of file read order.
// Unlike plan-step evaluation (spec.md §5), schema files carry no ordering
// requirement relative to one another, so concurrent loading is safe.
func (s *Store) LoadDir(ctx context.Context, dir string) (loaded int, errs []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, []error{err}
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return 0, nil
	}

	workers := runtime.NumCPU()
	if workers > len(paths) {
		workers = len(paths)
	}

	type outcome struct {
		path string
		err  error
	}

	jobs := make(chan string)
	results := make(chan outcome, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				raw, err := os.ReadFile(path)
				if err != nil {
					results <- outcome{path: path, err: err}
					continue
				}
				results <- outcome{path: path, err: s.Load(raw)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			s.logger.Warn("schema file load failed", zap.String("path", r.path), zap.Error(r.err))
			errs = append(errs, r.err)
			continue
		}
		loaded++
	}
	return loaded, errs
}
