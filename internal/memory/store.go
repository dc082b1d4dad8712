// File path: internal/memory/store.go
package memory

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// InsightDoc is one rendered insight as written to disk. The run's
// memory file is the human-readable artifact trail behind the audit
// rows in the history store.
type InsightDoc struct {
	RunID        string `json:"run_id"`
	Kind         string `json:"kind"`
	StudentID    string `json:"student_id,omitempty"`
	StudentName  string `json:"student_name,omitempty"`
	UsedFallback bool   `json:"used_fallback"`
	Rendered     string `json:"rendered"`
}

// RunInfo describes one stored run file.
type RunInfo struct {
	RunID string `json:"run_id"`
	Docs  int    `json:"docs"`
}

// Store appends rendered insight documents to one JSONL file per run.
type Store struct {
	path string
	mu   sync.RWMutex
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path required")
	}
	base := determineRoot(path)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{path: base}, nil
}

// Append writes documents to the run's file, creating it on first use.
func (s *Store) Append(ctx context.Context, runID string, docs []InsightDoc) error {
	if len(docs) == 0 {
		return nil
	}
	filePath, err := s.runFile(runID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode doc: %w", err)
		}
	}
	return nil
}

// RunDocs reads back every document stored for a run. A run with no
// file yields an empty slice.
func (s *Store) RunDocs(ctx context.Context, runID string) ([]InsightDoc, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	filePath, err := s.runFile(runID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	var docs []InsightDoc
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc InsightDoc
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("decode doc: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return docs, nil
}

// Runs lists the stored run files with their document counts.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	infos := make([]RunInfo, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		runID, ok := decodeRunID(strings.TrimSuffix(entry.Name(), ".jsonl"))
		if !ok {
			continue
		}
		count, err := countLines(filepath.Join(s.path, entry.Name()))
		if err != nil {
			return nil, err
		}
		infos = append(infos, RunInfo{RunID: runID, Docs: count})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RunID < infos[j].RunID })
	return infos, nil
}

func (s *Store) runFile(runID string) (string, error) {
	trimmed := strings.TrimSpace(runID)
	if trimmed == "" {
		return "", errors.New("run id required")
	}
	return filepath.Join(s.path, encodeRunID(trimmed)+".jsonl"), nil
}

// Run IDs are encoded into file names so arbitrary identifiers can
// never escape the store directory.
func encodeRunID(runID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(runID))
}

func decodeRunID(name string) (string, bool) {
	decoded, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func countLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	count := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan store: %w", err)
	}
	return count, nil
}

func determineRoot(path string) string {
	if filepath.Ext(path) != "" {
		return filepath.Dir(path)
	}
	return path
}
