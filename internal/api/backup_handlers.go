package api

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
	domainerrors "github.com/bookkeeperapp/bookkeeper-server/internal/errors"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "exportLog",
		Method:      http.MethodGet,
		Path:        "/api/v1/export",
		Summary:     "Export reading log",
		Description: "Downloads the caller's full history as a JSON or YAML backup",
		Tags:        []string{"Backup"},
		Security:    bearerAuth,
	}, s.handleExport)
}

// ExportInput selects the backup format.
type ExportInput struct {
	Format string `query:"format" enum:"json,yaml" default:"json" doc:"Backup encoding"`
}

// ExportOutput is a file download.
type ExportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func (s *Server) handleExport(ctx context.Context, input *ExportInput) (*ExportOutput, error) {
	user, err := GetUser(ctx)
	if err != nil {
		return nil, err
	}

	format, err := backup.ParseFormat(input.Format)
	if err != nil {
		return nil, errorFor(domainerrors.Validation(err.Error()))
	}

	var buf bytes.Buffer
	result, err := s.services.Backup.Export(ctx, &buf, user, format)
	if err != nil {
		return nil, errorFor(err)
	}

	s.logger.Info("backup exported",
		"user_id", user.ID,
		"format", format,
		"rows", result.Manifest.Rows,
	)

	name := backup.FileName(user.Username, format, time.Now())
	return &ExportOutput{
		ContentType:        format.ContentType(),
		ContentDisposition: `attachment; filename="` + name + `"`,
		Body:               buf.Bytes(),
	}, nil
}
