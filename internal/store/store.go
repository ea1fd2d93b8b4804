// Package store persists council runs as JSON artifacts on disk, one
// file per run, and loads them back for replay. Writes are atomic so a
// crash mid-save never leaves a truncated artifact behind.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artali/council/internal/council"
	"github.com/artali/council/internal/errors"
)

// SchemaVersion is the run artifact format version. Load refuses
// artifacts with any other version rather than guessing at their shape.
const SchemaVersion = 1

const runFilePrefix = "council_run"

// envelope wraps CouncilState with artifact metadata. The state's own
// fields are inlined so the file layout stays flat.
type envelope struct {
	SchemaVersion int       `json:"schema_version"`
	RunID         string    `json:"run_id,omitempty"`
	CreatedAtUTC  time.Time `json:"created_at_utc"`
	*council.CouncilState
}

// RunInfo summarizes one stored run for listings.
type RunInfo struct {
	Path           string
	RunID          string
	CreatedAtUTC   time.Time
	WinnerProvider string
	Problem        string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// DefaultRunPath returns a timestamped artifact path under dir.
func DefaultRunPath(dir string) string {
	ts := time.Now().UTC().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", runFilePrefix, ts))
}

// Save writes the state to path as a versioned artifact, creating
// parent directories as needed. Returns the run ID assigned to the
// artifact.
func Save(state *council.CouncilState, path string) (string, error) {
	runID := NewRunID()
	env := envelope{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		CreatedAtUTC:  time.Now().UTC(),
		CouncilState:  state,
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create runs dir: %w", err)
	}
	if err := atomicWriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return runID, nil
}

// Load reads a run artifact back into a CouncilState. A missing file is
// ErrRunNotFound; a version this engine does not understand is
// ErrUnsupportedSchemaVersion.
func Load(path string) (*council.CouncilState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrRunNotFound, path)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}

	var env envelope
	env.CouncilState = &council.CouncilState{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", path, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d",
			errors.ErrUnsupportedSchemaVersion, env.SchemaVersion, SchemaVersion)
	}
	return env.CouncilState, nil
}

// List returns summaries of the run artifacts under dir, newest first.
// Unreadable or foreign files are skipped.
func List(dir string) ([]RunInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read runs dir: %w", err)
	}

	var runs []RunInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, runFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(dir, name)
		info, err := peek(path)
		if err != nil {
			continue
		}
		runs = append(runs, info)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAtUTC.After(runs[j].CreatedAtUTC)
	})
	return runs, nil
}

// peek reads just the listing fields of an artifact.
func peek(path string) (RunInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunInfo{}, err
	}

	var head struct {
		SchemaVersion    int       `json:"schema_version"`
		RunID            string    `json:"run_id"`
		CreatedAtUTC     time.Time `json:"created_at_utc"`
		ProblemStatement string    `json:"problem_statement"`
		WinnerProvider   string    `json:"winner_provider"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return RunInfo{}, err
	}
	if head.SchemaVersion != SchemaVersion {
		return RunInfo{}, errors.ErrUnsupportedSchemaVersion
	}

	return RunInfo{
		Path:           path,
		RunID:          head.RunID,
		CreatedAtUTC:   head.CreatedAtUTC,
		WinnerProvider: head.WinnerProvider,
		Problem:        head.ProblemStatement,
	}, nil
}

// atomicWriteFile writes data via a temp file in the target directory
// followed by a rename, so readers never observe a partial artifact.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}
