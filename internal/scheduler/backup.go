package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/exporters"
)

const (
	backupPrefix     = "backup-"
	backupSuffix     = ".json"
	backupTimeLayout = "20060102-150405"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard 5-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Exporter writes the export document to a file.
type Exporter interface {
	ExportToFile(path string) (exporters.ExportResult, error)
}

// StatusRecorder keeps the outcome of the last backup.
type StatusRecorder interface {
	SetBackupStatus(at time.Time, status, message string) error
}

// AuditLogger journals every backup attempt.
type AuditLogger interface {
	LogBackup(path string, booksCount int, err error)
}

type Config struct {
	Enabled  bool
	Schedule string
	Dir      string
	Keep     int
}

// BackupScheduler writes export documents to Dir on a cron schedule and
// keeps only the newest Keep files.
type BackupScheduler struct {
	config   Config
	exporter Exporter
	status   StatusRecorder
	audit    AuditLogger
	logger   *zap.Logger
	now      func() time.Time

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	runMu     sync.Mutex
	isRunning bool
}

type Option func(*BackupScheduler)

func WithStatusRecorder(status StatusRecorder) Option {
	return func(s *BackupScheduler) { s.status = status }
}

func WithAuditLogger(audit AuditLogger) Option {
	return func(s *BackupScheduler) { s.audit = audit }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *BackupScheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BackupScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

func NewBackupScheduler(cfg Config, exporter Exporter, opts ...Option) *BackupScheduler {
	s := &BackupScheduler{
		config:   cfg,
		exporter: exporter,
		logger:   zap.NewNop(),
		now:      time.Now,
		cron:     cron.New(cron.WithParser(parser)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules backups when enabled. The scheduler stops when ctx is done.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("backup scheduler disabled")
		return nil
	}
	if s.config.Dir == "" {
		return fmt.Errorf("backup directory not configured")
	}
	if err := ValidateSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.Warn("scheduled backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("backup scheduler started",
		zap.String("schedule", s.config.Schedule),
		zap.String("dir", s.config.Dir),
		zap.Int("keep", s.config.Keep),
		zap.Time("next_run", s.cron.Entry(entryID).Next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running backup to finish and stops the schedule.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.logger.Info("backup scheduler stopped")
}

func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next backup will occur, or nil when not scheduled.
func (s *BackupScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// RunNow writes one backup immediately and prunes old ones. Runs are serialized.
func (s *BackupScheduler) RunNow(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	startedAt := s.now()
	path := filepath.Join(s.config.Dir, backupPrefix+startedAt.Format(backupTimeLayout)+backupSuffix)

	result, err := s.exporter.ExportToFile(path)
	if err != nil {
		s.record(startedAt, path, 0, fmt.Errorf("export failed: %w", err))
		return "", fmt.Errorf("backup: %w", err)
	}

	pruned, err := Prune(s.config.Dir, s.config.Keep)
	if err != nil {
		s.logger.Warn("failed to prune old backups", zap.String("dir", s.config.Dir), zap.Error(err))
	}

	s.logger.Info("backup written",
		zap.String("path", path),
		zap.Int("books", result.BooksExported),
		zap.Int("pruned", pruned))
	s.record(startedAt, path, result.BooksExported, nil)
	return path, nil
}

func (s *BackupScheduler) record(at time.Time, path string, books int, err error) {
	status, message := StatusSuccess, fmt.Sprintf("Backed up %d books to %s", books, filepath.Base(path))
	if err != nil {
		status, message = StatusFailed, err.Error()
	}
	if s.status != nil {
		if recErr := s.status.SetBackupStatus(at, status, message); recErr != nil {
			s.logger.Warn("failed to record backup status", zap.Error(recErr))
		}
	}
	if s.audit != nil {
		s.audit.LogBackup(path, books, err)
	}
}

// Backups lists the backup files in dir, newest first.
func Backups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		names = append(names, name)
	}
	// The timestamp layout sorts lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Prune deletes all but the newest keep backups in dir. keep <= 0 keeps everything.
func Prune(dir string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	names, err := Backups(dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, name := range names[min(keep, len(names)):] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
