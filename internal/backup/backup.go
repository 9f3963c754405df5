package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

// Document is the serialized backup.
type Document struct {
	Manifest Manifest              `json:"manifest" yaml:"manifest"`
	Logs     []domain.BookLogEntry `json:"logs" yaml:"logs"`
}

// Service exports and imports reading logs.
type Service struct {
	logs   store.LogStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a backup service over a log store.
func NewService(logs store.LogStore, logger *slog.Logger) *Service {
	return &Service{logs: logs, logger: logger, now: time.Now}
}

// Export writes the user's full history to w.
func (s *Service) Export(ctx context.Context, w io.Writer, user *domain.User, f Format) (*ExportResult, error) {
	start := s.now()

	rows, err := s.logs.ReadAll(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}

	days, _ := store.GroupByDay(rows)
	doc := Document{
		Manifest: Manifest{
			Version:   FormatVersion,
			ExportID:  uuid.NewString(),
			CreatedAt: start.UTC(),
			UserID:    user.ID,
			Username:  user.Username,
			Rows:      len(rows),
			Days:      len(days),
			Books:     len(readlog.EarliestLogPerBook(rows)),
		},
		Logs: rows,
	}

	data, err := encode(doc, f)
	if err != nil {
		return nil, err
	}
	n, err := w.Write(data)
	if err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	s.logger.Info("backup exported",
		"user_id", user.ID,
		"export_id", doc.Manifest.ExportID,
		"format", f,
		"rows", len(rows),
	)

	return &ExportResult{
		Manifest: doc.Manifest,
		Bytes:    int64(n),
		Duration: s.now().Sub(start),
	}, nil
}

// Import reads a document from r and replays it for userID day by day.
// Days present in the document replace the same days in the store; other
// days are left alone.
func (s *Service) Import(ctx context.Context, r io.Reader, userID string, opts ImportOptions) (*ImportResult, error) {
	start := s.now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	doc, err := decode(data, opts.Format)
	if err != nil {
		return nil, err
	}
	if err := doc.Manifest.Validate(); err != nil {
		return nil, err
	}
	if doc.Manifest.Rows != len(doc.Logs) {
		return nil, fmt.Errorf("%w: manifest lists %d rows, document has %d",
			ErrCorruptedBackup, doc.Manifest.Rows, len(doc.Logs))
	}
	if err := readlog.Validate(doc.Logs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedBackup, err)
	}

	res := &ImportResult{Manifest: doc.Manifest, Rows: len(doc.Logs), DryRun: opts.DryRun}
	if opts.DryRun {
		days, _ := store.GroupByDay(doc.Logs)
		res.Days = len(days)
	} else {
		res.Days, err = store.ReplayDays(ctx, s.logs, userID, doc.Logs)
		if err != nil {
			return nil, err
		}
	}
	res.Duration = s.now().Sub(start)

	s.logger.Info("backup imported",
		"user_id", userID,
		"export_id", doc.Manifest.ExportID,
		"days", res.Days,
		"rows", res.Rows,
		"dry_run", opts.DryRun,
	)
	return res, nil
}

func encode(doc Document, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func decode(data []byte, f Format) (*Document, error) {
	var doc Document
	switch f {
	case FormatJSON, "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return &doc, nil
}
