package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Auditor archives raw import payloads so a bad import can be inspected or replayed.
type Auditor struct {
	AuditDir string
	logger   *zap.Logger
}

func NewAuditor(auditDir string, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{
		AuditDir: auditDir,
		logger:   logger,
	}
}

// ArchiveImport saves raw to a file with a UUID4 filename and returns the
// filename. Valid JSON is indented; anything else is stored as received.
func (a *Auditor) ArchiveImport(raw []byte) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	data := raw
	var indented bytes.Buffer
	if json.Indent(&indented, raw, "", "  ") == nil {
		data = indented.Bytes()
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	a.logger.Info("import payload archived", zap.String("path", path), zap.Int("size_bytes", len(raw)))
	return filename, nil
}

// PruneArchives removes archived payloads last modified more than retention
// ago. A missing archive directory has nothing to prune.
func (a *Auditor) PruneArchives(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(a.AuditDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read audit directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.AuditDir, entry.Name())); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed++
	}

	if removed > 0 {
		a.logger.Info("import archives pruned", zap.Int("removed", removed), zap.Duration("retention", retention))
	}
	return removed, nil
}

func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
