package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odnalezione/odnalezione-backend/internal/http/response"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/csvload"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/normalize"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/validate"
	"github.com/odnalezione/odnalezione-backend/internal/platform/apierr"
	"github.com/odnalezione/odnalezione-backend/internal/platform/dbctx"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
	"github.com/odnalezione/odnalezione-backend/internal/services"
)

const (
	msgMethodNotAllowed = "Metoda nie dozwolona. Użyj POST."
	msgMissingAPIKey    = "OPENAI_API_KEY nie jest ustawione"
	msgInvalidBody      = "Nieprawidłowy format JSON w body"
	msgMissingCSV       = "Brak csvContent w requestcie"
	msgMissingJSON      = "Brak jsonContent w requestcie dla akcji validate"
	msgInvalidAction    = "Nieprawidłowa akcja. Użyj 'process', 'validate' lub 'full'"
	msgBodyTooLarge     = "Body żądania jest zbyt duże"
)

type ImportHandler struct {
	imports  services.ImportService
	llmReady bool
}

// NewImportHandler serves the processing endpoint. llmReady reports whether a
// model API key is configured; requests are rejected up front when it is not.
func NewImportHandler(imports services.ImportService, llmReady bool) *ImportHandler {
	return &ImportHandler{imports: imports, llmReady: llmReady}
}

// POST /  and  POST /api/process
func (h *ImportHandler) Process(c *gin.Context) {
	if !h.llmReady {
		response.RespondMessage(c, apierr.Internal("missing_api_key", errors.New(msgMissingAPIKey)))
		return
	}

	var req importing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondMessage(c, apierr.New(http.StatusRequestEntityTooLarge, "body_too_large", errors.New(msgBodyTooLarge)))
			return
		}
		response.RespondMessage(c, apierr.BadRequest("invalid_body", errors.New(msgInvalidBody)))
		return
	}

	resp, err := h.imports.Run(dbctx.Context{Ctx: c.Request.Context()}, req)
	if err != nil {
		response.RespondMessage(c, classifyImportError(err))
		return
	}
	response.RespondOK(c, resp)
}

// Any other method on the processing routes.
func (h *ImportHandler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", "POST, OPTIONS")
	response.RespondMessage(c, apierr.New(http.StatusMethodNotAllowed, "method_not_allowed", errors.New(msgMethodNotAllowed)))
}

func classifyImportError(err error) error {
	var (
		normErr *normalize.Error
		valErr  *validate.Error
		httpErr *openai.HTTPError
	)
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		return apierr.Internal("missing_api_key", errors.New(msgMissingAPIKey))
	case errors.Is(err, importing.ErrMissingCSVContent):
		return apierr.BadRequest("missing_csv_content", errors.New(msgMissingCSV))
	case errors.Is(err, importing.ErrMissingJSONContent):
		return apierr.BadRequest("missing_json_content", errors.New(msgMissingJSON))
	case errors.Is(err, importing.ErrUnknownAction):
		return apierr.BadRequest("invalid_action", errors.New(msgInvalidAction))
	case errors.Is(err, csvload.ErrNoRecords):
		return apierr.BadRequest("no_records", err)
	case errors.Is(err, importing.ErrRecordCountMismatch):
		return apierr.BadRequest("record_count_mismatch", err)
	case errors.Is(err, importing.ErrInvalidJSONContent):
		return apierr.BadRequest("invalid_json_content", err)
	case errors.As(err, &normErr):
		return apierr.Internal("normalization_failed", err)
	case errors.As(err, &valErr):
		return apierr.Internal("validation_failed", err)
	case errors.As(err, &httpErr):
		return apierr.Internal("upstream_error", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.Internal("canceled", err)
	default:
		return apierr.Internal("internal_error", err)
	}
}
