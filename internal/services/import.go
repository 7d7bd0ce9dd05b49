package services

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/observability"
	"github.com/odnalezione/odnalezione-backend/internal/platform/dbctx"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

type ImportRunner interface {
	Run(ctx context.Context, req importing.Request) (*importing.Response, error)
}

type ImportService interface {
	Run(dbc dbctx.Context, req importing.Request) (*importing.Response, error)
}

type importService struct {
	log     *logger.Logger
	runner  ImportRunner
	drafts  DraftService
	metrics *observability.Metrics
}

// NewImportService runs import requests and opens a review draft for every
// validated file that carries a file name. drafts and metrics may be nil.
func NewImportService(log *logger.Logger, runner ImportRunner, drafts DraftService, metrics *observability.Metrics) ImportService {
	return &importService{
		log:     log.With("service", "ImportService"),
		runner:  runner,
		drafts:  drafts,
		metrics: metrics,
	}
}

func (s *importService) Run(dbc dbctx.Context, req importing.Request) (*importing.Response, error) {
	if s.runner == nil {
		return nil, openai.ErrMissingAPIKey
	}
	ctx, span := otel.Tracer("odnalezione/import").Start(dbc.Ctx, "import.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("import.action", req.Action),
		attribute.String("import.file_name", req.FileName),
	)
	dbc = dbc.With(ctx)

	start := time.Now()
	resp, err := s.runner.Run(ctx, req)
	s.metrics.ObserveImport(req.Action, err, resp.RecordCount(), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "import failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("import.records", resp.RecordCount()))
	name := strings.TrimSpace(req.FileName)
	evals := resp.Evaluations()
	if s.drafts == nil || name == "" || len(evals) == 0 {
		return resp, nil
	}
	if _, err := s.drafts.Create(dbc, DraftInput{
		FileName:    name,
		FileType:    req.FileType,
		FileContent: base64.StdEncoding.EncodeToString([]byte(req.CSVContent)),
		Records:     evals,
	}); err != nil {
		s.log.Ctx(dbc.Ctx).Warn("Opening review draft failed",
			"file_name", name,
			"error", err,
		)
	}
	return resp, nil
}
