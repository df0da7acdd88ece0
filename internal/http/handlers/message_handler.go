// Message dispatch HTTP handlers.
//
// This file exposes the REST surface of the dispatch engine:
//   - POST /messages/send              (plain text)
//   - POST /messages/send-media        (media attachment by URL)
//   - POST /messages/send-batch        (up to 100 independent sends)
//   - POST /messages/send-template     (pre-approved template message)
//   - POST /messages/send-interactive  (button / list payload)
//   - GET  /messages/:id               (one dispatch record)
//   - GET  /conversations/:id/messages (paginated history)
//
// Handlers are transport-thin:
//   - bind & validate inputs at the edge (gin binding + validator tags)
//   - delegate to the dispatch / history services
//   - translate the services error taxonomy into HTTP statuses
//
// Idempotency:
// If the client supplies an Idempotency-Key header on /messages/send and a
// previous successful result exists for (tenant, key), the handler returns
// the recorded dispatch envelope and sets `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/channels"
	"github.com/ianampudia11/go-omni-inbox/internal/domain"
	"github.com/ianampudia11/go-omni-inbox/internal/http/middleware"
	"github.com/ianampudia11/go-omni-inbox/internal/repo"
	"github.com/ianampudia11/go-omni-inbox/internal/services"
	"github.com/ianampudia11/go-omni-inbox/internal/utils"
)

//
// Service contracts
//

// Dispatcher is the dispatch-service contract the handlers depend on.
type Dispatcher interface {
	SendText(ctx context.Context, tenantID, channelID uint, to, text string) (*services.SendResult, error)
	SendMedia(ctx context.Context, tenantID, channelID uint, to string, kind channels.MediaKind, mediaURL, caption, filename string) (*services.SendResult, error)
	SendTemplate(ctx context.Context, tenantID, channelID uint, to, templateName, lang string, components []channels.TemplateComponent) (*services.SendResult, error)
	SendInteractive(ctx context.Context, tenantID, channelID uint, to string, content channels.InteractiveContent) (*services.SendResult, error)
	SendBatch(ctx context.Context, tenantID uint, items []services.BatchItem) ([]services.SendResult, error)
}

// Historian is the read-side contract for stored dispatch records.
type Historian interface {
	GetMessage(ctx context.Context, tenantID, id uint) (*domain.Message, error)
	ListConversationMessages(ctx context.Context, tenantID, conversationID uint, page, pageSize int) ([]domain.Message, int64, error)
}

// Handlers groups the HTTP endpoints for dispatch and history. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic. DB and IdemTTL power the idempotency replay/store path.
type Handlers struct {
	dispatch Dispatcher
	history  Historian

	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(dispatch Dispatcher, history Historian, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{dispatch: dispatch, history: history, db: db, idemTTL: idemTTL}
}

//
// DTOs
//

// SendMessageRequest is the JSON payload for a plain-text send.
type SendMessageRequest struct {
	ChannelID uint   `json:"channel_id" binding:"required" example:"7"`
	To        string `json:"to" binding:"required,min=1,max=20" example:"+15551234567"`
	Message   string `json:"message" binding:"required,min=1,max=4096" example:"Your order has shipped"`
}

// SendMediaRequest is the JSON payload for a media send. MediaType must be one
// of the closed media kinds (enforced by the custom `mediakind` rule).
type SendMediaRequest struct {
	ChannelID uint   `json:"channel_id" binding:"required"`
	To        string `json:"to" binding:"required,min=1,max=20"`
	MediaType string `json:"media_type" binding:"required,mediakind"`
	MediaURL  string `json:"media_url" binding:"required,url"`
	Caption   string `json:"caption" binding:"omitempty,max=1024"`
	Filename  string `json:"filename" binding:"omitempty,max=255"`
}

// SendTemplateRequest is the JSON payload for a template send.
type SendTemplateRequest struct {
	ChannelID    uint                         `json:"channel_id" binding:"required"`
	To           string                       `json:"to" binding:"required,min=1,max=20"`
	TemplateName string                       `json:"template_name" binding:"required,min=1,max=512"`
	Language     string                       `json:"language" binding:"required"`
	Components   []channels.TemplateComponent `json:"components,omitempty"`
}

// SendInteractiveRequest is the JSON payload for a button/list send. Content
// structure is validated by the interactive shaper, not at the binding layer.
type SendInteractiveRequest struct {
	ChannelID uint                        `json:"channel_id" binding:"required"`
	To        string                      `json:"to" binding:"required,min=1,max=20"`
	Content   channels.InteractiveContent `json:"content" binding:"required"`
}

// SendBatchRequest wraps the batch items. Items are deliberately not
// dive-validated here: a malformed item must fail alone, as a failed entry in
// the response array, never the whole batch.
type SendBatchRequest struct {
	Messages []services.BatchItem `json:"messages" binding:"required,min=1"`
}

// ListMessagesResponse contains a page of conversation messages and
// pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

//
// Helpers
//

// tenantOf returns the tenant resolved by RequireTenant. The middleware runs
// on every API route, so absence is a wiring bug surfaced as 400.
func tenantOf(c *gin.Context) (uint, bool) {
	tid, ok := middleware.TenantFrom(c)
	if !ok {
		fail(c, http.StatusBadRequest, "tenant_required", "missing tenant")
	}
	return tid, ok
}

// bindJSON binds the request body and, on failure, writes a 400 with a
// field-level detail message when the validator can provide one.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			fail(c, http.StatusBadRequest, string(services.KindValidation),
				fmt.Sprintf("field %q failed validation on %q", fe.Field(), fe.Tag()))
			return false
		}
		fail(c, http.StatusBadRequest, string(services.KindValidation), "invalid request body")
		return false
	}
	return true
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return uint(v), true
}

// clampPagination parses page/page_size from query parameters, applies sane
// defaults and caps, and returns the validated (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// observe feeds the dispatch outcome into the Prometheus counter.
func observe(res *services.SendResult) {
	if res != nil && res.ChannelType != "" {
		middleware.ObserveDispatch(string(res.ChannelType), res.Status)
	}
}

//
// Handlers
//

// SendMessage handles POST /messages/send.
//
// Supports idempotent retries via the Idempotency-Key header: a key that
// matches a stored, unexpired record replays the recorded envelope with
// `Idempotency-Replayed: true` instead of dispatching again.
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}

	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, tenantID, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if env, err2 := h.replayEnvelope(c, tenantID, rec.MessageID); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, env)
				return
			}
		}
	}

	res, err := h.dispatch.SendText(ctx, tenantID, req.ChannelID, req.To, req.Message)
	if err != nil {
		failDispatch(c, err)
		return
	}
	observe(res)

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.db != nil {
		_, _ = repo.CreateIdempotency(ctx, h.db, tenantID, idemKey, res.ID, http.StatusCreated, h.idemTTL)
	}

	ok(c, http.StatusCreated, res)
}

// replayEnvelope rebuilds a SendResult from a stored dispatch record.
func (h *Handlers) replayEnvelope(c *gin.Context, tenantID, messageID uint) (*services.SendResult, error) {
	ctx := c.Request.Context()
	m, err := h.history.GetMessage(ctx, tenantID, messageID)
	if err != nil {
		return nil, err
	}
	conv, err := repo.GetConversation(ctx, h.db, m.ConversationID, tenantID)
	if err != nil {
		return nil, err
	}
	return &services.SendResult{
		ID:             m.ID,
		ExternalID:     m.ExternalID,
		Status:         m.Status,
		Timestamp:      m.CreatedAt,
		ChannelType:    conv.ChannelType,
		ConversationID: m.ConversationID,
	}, nil
}

// SendMedia handles POST /messages/send-media.
func (h *Handlers) SendMedia(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}

	var req SendMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.dispatch.SendMedia(ctx, tenantID, req.ChannelID, req.To,
		channels.MediaKind(req.MediaType), req.MediaURL, req.Caption, req.Filename)
	if err != nil {
		failDispatch(c, err)
		return
	}
	observe(res)
	ok(c, http.StatusCreated, res)
}

// SendTemplate handles POST /messages/send-template.
func (h *Handlers) SendTemplate(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}

	var req SendTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.dispatch.SendTemplate(ctx, tenantID, req.ChannelID, req.To,
		req.TemplateName, req.Language, req.Components)
	if err != nil {
		failDispatch(c, err)
		return
	}
	observe(res)
	ok(c, http.StatusCreated, res)
}

// SendInteractive handles POST /messages/send-interactive.
func (h *Handlers) SendInteractive(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}

	var req SendInteractiveRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.dispatch.SendInteractive(ctx, tenantID, req.ChannelID, req.To, req.Content)
	if err != nil {
		failDispatch(c, err)
		return
	}
	observe(res)
	ok(c, http.StatusCreated, res)
}

// SendBatch handles POST /messages/send-batch.
//
// The response is always an array with one entry per input item, in input
// order; failed items carry {status:"failed", conversation_id:0, error} and
// do not affect their siblings. Only whole-batch problems (empty batch, size
// above the cap) fail the request itself.
func (h *Handlers) SendBatch(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}

	var req SendBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	results, err := h.dispatch.SendBatch(ctx, tenantID, req.Messages)
	if err != nil {
		failDispatch(c, err)
		return
	}
	for i := range results {
		observe(&results[i])
	}
	ok(c, http.StatusCreated, results)
}

// GetMessage handles GET /messages/:id.
func (h *Handlers) GetMessage(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}
	id, okID := pathID(c, "id")
	if !okID {
		return
	}

	m, err := h.history.GetMessage(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, m)
}

// ListConversationMessages handles GET /conversations/:id/messages.
func (h *Handlers) ListConversationMessages(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID, okT := tenantOf(c)
	if !okT {
		return
	}
	convID, okID := pathID(c, "id")
	if !okID {
		return
	}

	page, pageSize := clampPagination(c)

	items, total, err := h.history.ListConversationMessages(ctx, tenantID, convID, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
