package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JulienEnigma/instacommand/internal/telemetry"
)

// csvHeader is the fixed column order of the CSV export surface.
var csvHeader = []string{
	"Timestamp", "Action", "Target", "Details", "Type", "Outcome", "Probability", "FollowbackChance",
}

// Store writes local exports of the telemetry buffer. Export is a purely
// local operation; no network round-trip is involved.
type Store struct {
	exportDir string
	now       func() time.Time
}

// NewStore creates the export directory if needed.
func NewStore(exportDir string) (*Store, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &Store{exportDir: exportDir, now: time.Now}, nil
}

// WithClock overrides the store's clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Dir returns the export directory.
func (s *Store) Dir() string {
	return s.exportDir
}

func (s *Store) stampedPath(ext string) string {
	stamp := s.now().UTC().Format("20060102-150405")
	return filepath.Join(s.exportDir, fmt.Sprintf("logs-%s.%s", stamp, ext))
}

// WriteJSON serializes the given log snapshot as indented JSON and returns
// the written path.
func (s *Store) WriteJSON(entries []telemetry.LogEntry) (string, error) {
	if entries == nil {
		entries = []telemetry.LogEntry{}
	}
	blob, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal log export: %w", err)
	}
	path := s.stampedPath("json")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("write log export: %w", err)
	}
	return path, nil
}

// WriteCSV serializes the given log snapshot with the fixed column order and
// returns the written path. Absent optional fields become empty cells.
func (s *Store) WriteCSV(entries []telemetry.LogEntry) (string, error) {
	path := s.stampedPath("csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create log export: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write export header: %w", err)
	}
	for _, entry := range entries {
		record := []string{
			entry.Timestamp,
			entry.Action,
			entry.Target,
			entry.Details,
			string(entry.Category),
			string(entry.Outcome),
			optionalInt(entry.Probability),
			optionalInt(entry.FollowbackChance),
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write export row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush log export: %w", err)
	}
	return path, nil
}

func optionalInt(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
