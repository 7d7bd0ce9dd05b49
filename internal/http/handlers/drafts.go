package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/http/response"
	"github.com/odnalezione/odnalezione-backend/internal/modules/review"
	"github.com/odnalezione/odnalezione-backend/internal/platform/apierr"
	"github.com/odnalezione/odnalezione-backend/internal/platform/dbctx"
	"github.com/odnalezione/odnalezione-backend/internal/services"
)

type DraftHandler struct {
	drafts services.DraftService
}

func NewDraftHandler(drafts services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

type putDraftRequest struct {
	Records     []items.RecordEvaluation `json:"records"`
	FileType    string                   `json:"fileType"`
	FileContent string                   `json:"fileContent"`
}

// GET /api/drafts
func (h *DraftHandler) List(c *gin.Context) {
	list, err := h.drafts.List(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondAPIError(c, classifyDraftError(err))
		return
	}
	response.RespondOK(c, gin.H{"drafts": list})
}

// GET /api/drafts/:fileName
func (h *DraftHandler) Get(c *gin.Context) {
	v, err := h.drafts.Get(dbctx.Context{Ctx: c.Request.Context()}, c.Param("fileName"))
	if err != nil {
		response.RespondAPIError(c, classifyDraftError(err))
		return
	}
	response.RespondOK(c, gin.H{"draft": v})
}

// PUT /api/drafts/:fileName
func (h *DraftHandler) Put(c *gin.Context) {
	var req putDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	v, err := h.drafts.Create(dbctx.Context{Ctx: c.Request.Context()}, services.DraftInput{
		FileName:    c.Param("fileName"),
		FileType:    req.FileType,
		FileContent: req.FileContent,
		Records:     req.Records,
	})
	if err != nil {
		response.RespondAPIError(c, classifyDraftError(err))
		return
	}
	response.RespondOK(c, gin.H{"draft": v})
}

// POST /api/drafts/:fileName/actions
func (h *DraftHandler) Apply(c *gin.Context) {
	var action review.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.drafts.Apply(dbctx.Context{Ctx: c.Request.Context()}, c.Param("fileName"), action)
	if err != nil {
		response.RespondAPIError(c, classifyDraftError(err))
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/drafts/:fileName
func (h *DraftHandler) Delete(c *gin.Context) {
	deleted, err := h.drafts.Discard(dbctx.Context{Ctx: c.Request.Context()}, c.Param("fileName"))
	if err != nil {
		response.RespondAPIError(c, classifyDraftError(err))
		return
	}
	if !deleted {
		response.RespondError(c, http.StatusNotFound, "draft_not_found", services.ErrDraftNotFound)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func classifyDraftError(err error) error {
	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		return apierr.New(http.StatusNotFound, "draft_not_found", err)
	case errors.Is(err, review.ErrUnknownRecord):
		return apierr.BadRequest("unknown_record", err)
	case errors.Is(err, review.ErrUnknownField):
		return apierr.BadRequest("unknown_field", err)
	case errors.Is(err, review.ErrInvalidDate):
		return apierr.BadRequest("invalid_date", err)
	case errors.Is(err, review.ErrNothingAccepted):
		return apierr.BadRequest("nothing_accepted", err)
	case errors.Is(err, review.ErrUnknownAction):
		return apierr.BadRequest("unknown_action", err)
	case errors.Is(err, review.ErrUnknownSort):
		return apierr.BadRequest("unknown_sort", err)
	default:
		return apierr.Internal("draft_failed", err)
	}
}
