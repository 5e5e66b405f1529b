package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ashwch/jarvis/internal/appdirs"
	"github.com/ashwch/jarvis/internal/intent"
)

const (
	storeFileName = "journal.json"

	DefaultMaxEntries = 500

	// A correction is recalled once its score reaches recallScore.
	recallScore    = 12.0
	learnBonus     = 6.0
	failurePenalty = 8.0
	maxScore       = 100.0
)

type Entry struct {
	At         time.Time `json:"at"`
	Utterance  string    `json:"utterance"`
	Status     string    `json:"status"`
	Handler    string    `json:"handler,omitempty"`
	Category   string    `json:"category,omitempty"`
	Action     string    `json:"action,omitempty"`
	Confidence float64   `json:"confidence"`
	ElapsedMS  int64     `json:"elapsed_ms"`
}

type Correction struct {
	Utterance string  `json:"utterance"`
	Command   string  `json:"command"`
	Score     float64 `json:"score"`
	Uses      int     `json:"uses"`
	Failures  int     `json:"failures,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

type Store struct {
	Entries     []Entry      `json:"entries"`
	Corrections []Correction `json:"corrections,omitempty"`
}

// Journal is a Store bound to a file. All methods are safe for concurrent
// use and persist before returning.
type Journal struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	store      Store
}

func DefaultPath() (string, error) {
	return appdirs.StateFilePath(storeFileName)
}

func Open(path string, maxEntries int) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	store, err := load(path)
	if err != nil {
		return nil, err
	}
	j := &Journal{path: path, maxEntries: maxEntries, store: store}
	j.trim()
	return j, nil
}

func load(path string) (Store, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Store{}, nil
	}
	if err != nil {
		return Store{}, fmt.Errorf("could not read journal: %w", err)
	}
	var store Store
	if err := json.Unmarshal(bytes, &store); err != nil {
		return Store{}, fmt.Errorf("could not parse journal: %w", err)
	}
	return store, nil
}

func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) Record(entry Entry) error {
	entry.Utterance = strings.TrimSpace(entry.Utterance)
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.store.Entries = append(j.store.Entries, entry)
	j.trim()
	return j.save()
}

func (j *Journal) Entries(limit int) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	entries := j.store.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return slices.Clone(entries)
}

func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.store = Store{}
	return j.save()
}

// Learn strengthens a correction after a successful re-route and weakens it
// after a failed one. Corrections that drop to zero are forgotten.
func (j *Journal) Learn(utterance, command string, success bool) error {
	key := intent.Normalize(utterance)
	command = strings.TrimSpace(command)
	if key == "" || command == "" {
		return fmt.Errorf("utterance and command are required")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	idx := slices.IndexFunc(j.store.Corrections, func(c Correction) bool {
		return c.Utterance == key && strings.EqualFold(c.Command, command)
	})
	if idx < 0 {
		if !success {
			return nil
		}
		j.store.Corrections = append(j.store.Corrections, Correction{
			Utterance: key,
			Command:   command,
			Score:     recallScore,
			Uses:      1,
			UpdatedAt: now,
		})
		return j.save()
	}

	c := j.store.Corrections[idx]
	c.Uses++
	c.UpdatedAt = now
	if success {
		c.Score = min(maxScore, c.Score+learnBonus)
	} else {
		c.Failures++
		c.Score -= failurePenalty
	}
	if c.Score <= 0 {
		j.store.Corrections = slices.Delete(j.store.Corrections, idx, idx+1)
	} else {
		j.store.Corrections[idx] = c
	}
	return j.save()
}

func (j *Journal) Recall(utterance string) (string, bool) {
	key := intent.Normalize(utterance)
	if key == "" {
		return "", false
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	best := -1
	for i, c := range j.store.Corrections {
		if c.Utterance != key || c.Score < recallScore {
			continue
		}
		if best < 0 || c.Score > j.store.Corrections[best].Score ||
			(c.Score == j.store.Corrections[best].Score && c.UpdatedAt > j.store.Corrections[best].UpdatedAt) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return j.store.Corrections[best].Command, true
}

func (j *Journal) trim() {
	if over := len(j.store.Entries) - j.maxEntries; over > 0 {
		j.store.Entries = slices.Delete(j.store.Entries, 0, over)
	}
}

func (j *Journal) save() error {
	payload, err := json.MarshalIndent(j.store, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode journal: %w", err)
	}
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create journal directory: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".jarvis-journal-*.json")
	if err != nil {
		return fmt.Errorf("could not create temp journal file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}
	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp journal file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp journal file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp journal file: %w", err)
	}
	if err := os.Rename(tempPath, j.path); err != nil {
		cleanup()
		return fmt.Errorf("could not atomically replace journal file: %w", err)
	}
	return nil
}
