// Package journal keeps a JSON Lines record of session events on disk so
// past generations can be listed with 'scriptsmith history'.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/log"
	"github.com/felixgeelhaar/scriptsmith/internal/session"
)

// FileName is the active journal file inside the journal directory
const FileName = "sessions.jsonl"

// Config contains journal configuration
type Config struct {
	// Dir is the directory for journal files
	Dir string

	// MaxFileSize is the max size before rotation (default: 10MB)
	MaxFileSize int64

	// MaxFiles is the max number of rotated files kept (default: 5)
	MaxFiles int
}

// DefaultConfig returns the default rotation limits for dir
func DefaultConfig(dir string) Config {
	return Config{
		Dir:         dir,
		MaxFileSize: 10 * 1024 * 1024,
		MaxFiles:    5,
	}
}

// Journal appends entries to disk. It implements session.Observer.
type Journal struct {
	dir         string
	maxFileSize int64
	maxFiles    int

	mu      sync.Mutex
	file    *os.File
	entries int
	masks   []string
	masker  *strings.Replacer

	// OnError receives write failures from OnEvent, which cannot return them
	OnError func(error)
}

// Open creates the directory if needed and opens the journal for appending
func Open(cfg Config) (*Journal, error) {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultConfig(cfg.Dir).MaxFileSize
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultConfig(cfg.Dir).MaxFiles
	}

	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	j := &Journal{dir: cfg.Dir, maxFileSize: cfg.MaxFileSize, maxFiles: cfg.MaxFiles}
	if err := j.open(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) open() error {
	f, err := os.OpenFile(j.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	j.file = f
	return nil
}

// Path returns the path of the active journal file
func (j *Journal) Path() string {
	return filepath.Join(j.dir, FileName)
}

// Mask registers literal values, such as login credentials, that are
// replaced before any entry reaches disk. Empty values are ignored.
func (j *Journal) Mask(secrets ...string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, s := range secrets {
		if s != "" {
			j.masks = append(j.masks, s, log.RedactedValue)
		}
	}
	if len(j.masks) > 0 {
		j.masker = strings.NewReplacer(j.masks...)
	}
}

// redact masks registered secrets and anything that looks like an API key
func (j *Journal) redact(s string) string {
	j.mu.Lock()
	masker := j.masker
	j.mu.Unlock()

	if masker != nil {
		s = masker.Replace(s)
	}
	return log.RedactString(s)
}

// scrub redacts the free-form text of an entry. Verdict issues are quoted
// from checker replies and may repeat literals from the script.
func (j *Journal) scrub(entry *Entry) {
	entry.Error = j.redact(entry.Error)

	v, ok := entry.Verdict()
	if !ok {
		return
	}
	issues := make([]string, len(v.Issues))
	for i, issue := range v.Issues {
		issues[i] = j.redact(issue)
	}
	entry.Data["verdict"] = checker.Verdict{Status: v.Status, Issues: issues}
}

// OnEvent implements session.Observer
func (j *Journal) OnEvent(ev session.Event) {
	entry := FromEvent(ev)
	if entry == nil {
		return
	}
	if err := j.Record(entry); err != nil && j.OnError != nil {
		j.OnError(err)
	}
}

// Record redacts and appends one entry
func (j *Journal) Record(entry *Entry) error {
	j.scrub(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize journal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal is closed")
	}
	if err := j.checkRotation(); err != nil {
		return fmt.Errorf("journal rotation failed: %w", err)
	}

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}

	j.entries++
	if j.entries%10 == 0 {
		return j.file.Sync()
	}
	return nil
}

// Close syncs and closes the journal
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *Journal) checkRotation() error {
	info, err := j.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < j.maxFileSize {
		return nil
	}
	return j.rotate()
}

func (j *Journal) rotate() error {
	if err := j.file.Close(); err != nil {
		return err
	}

	rotated := filepath.Join(j.dir, fmt.Sprintf("sessions_%s.jsonl", time.Now().UTC().Format("20060102_150405.000000")))
	if err := os.Rename(j.Path(), rotated); err != nil {
		return err
	}
	if err := j.cleanupOldFiles(); err != nil {
		return err
	}
	return j.open()
}

// cleanupOldFiles keeps the newest maxFiles rotated files
func (j *Journal) cleanupOldFiles() error {
	files, err := rotatedFiles(j.dir)
	if err != nil {
		return err
	}
	if len(files) <= j.maxFiles {
		return nil
	}
	for _, f := range files[:len(files)-j.maxFiles] {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// rotatedFiles lists rotated journals, oldest first
func rotatedFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "sessions_*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadDir reads every entry in dir, rotated files first. A missing
// directory yields no entries.
func ReadDir(dir string) ([]*Entry, error) {
	files, err := rotatedFiles(dir)
	if err != nil {
		return nil, err
	}
	files = append(files, filepath.Join(dir, FileName))

	var entries []*Entry
	for _, path := range files {
		read, err := ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		entries = append(entries, read...)
	}
	return entries, nil
}

// ReadFile reads one journal file. Lines that are not valid entries are
// skipped so a torn final write does not hide the rest.
func ReadFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil || e.SessionID == "" {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, scanner.Err()
}
