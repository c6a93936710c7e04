package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/innut/innut/internal/services"
	"github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/qrcode"
	"github.com/innut/innut/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns notifications for the current user, or for user_id when the
// caller is a super admin.
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	page, err := h.service.List(requestContext(c), actor, services.ListNotificationsInput{
		UserID:     strings.TrimSpace(c.Query("user_id")),
		Limit:      parseIntQuery(c, "limit", 0),
		Offset:     parseIntQuery(c, "offset", 0),
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Items, &response.Meta{
		Limit:  page.Limit,
		Offset: page.Offset,
		Total:  page.Total,
		Unread: page.Unread,
	})
}

// UnreadCount returns the unread badge count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(requestContext(c), actor, strings.TrimSpace(c.Query("user_id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks a notification read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	dto, err := h.service.MarkRead(requestContext(c), actor, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto)
}

type markAllReadRequest struct {
	UserID string `json:"user_id"`
}

// MarkAllRead marks all of a user's notifications read. The body is optional.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req markAllReadRequest
	if c.Request.ContentLength > 0 {
		if !bindAndValidate(c, &req) {
			return
		}
	}

	count, err := h.service.MarkAllRead(requestContext(c), actor, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": count})
}

type createNotificationRequest struct {
	UserID    string         `json:"user_id" validate:"required,notblank,max=64"`
	Type      string         `json:"type" validate:"required,notblank,max=64"`
	Title     string         `json:"title" validate:"required,notblank,max=255"`
	Message   string         `json:"message" validate:"max=4000"`
	Severity  string         `json:"severity" validate:"omitempty,oneof=info success warning error"`
	ActionURL string         `json:"action_url" validate:"omitempty,max=2048"`
	Metadata  map[string]any `json:"metadata"`
}

// Create persists a notification for a user and pushes it to their channels.
func (h *NotificationHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createNotificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dto, err := h.service.Create(requestContext(c), actor, services.CreateNotificationInput{
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Severity:  req.Severity,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto)
}

// QRCode renders the notification's action link as a PNG.
func (h *NotificationHandler) QRCode(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	dto, err := h.service.Get(requestContext(c), actor, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	if dto.ActionURL == "" {
		response.Error(c, errors.ErrNotFound.WithMessage("notification has no action link"))
		return
	}

	png, err := qrcode.LinkPNG(absoluteLink(c, dto.ActionURL), parseIntQuery(c, "size", qrcode.DefaultSize))
	if err != nil {
		response.Error(c, errors.NewBadRequest("action link cannot be encoded").WithInternal(err))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// absoluteLink resolves a relative action path against the request host.
func absoluteLink(c *gin.Context, link string) string {
	if !strings.HasPrefix(link, "/") {
		return link
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + link
}
