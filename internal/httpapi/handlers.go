package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ykvlv/alert-relay-bot/internal/domain"
	"github.com/ykvlv/alert-relay-bot/internal/transport"
)

// NotifyRequest is the body of POST /api/notify. objectId is accepted as an alias of userId.
type NotifyRequest struct {
	UserID          string          `json:"userId"`
	ObjectID        string          `json:"objectId"`
	MessageCardJSON json.RawMessage `json:"messageCardJson"`
}

// SettingsUpdateRequest is the body of POST /api/user/settings.
type SettingsUpdateRequest struct {
	UserID               string     `json:"userId"`
	ObjectID             string     `json:"objectId"`
	NotificationsEnabled *bool      `json:"notificationsEnabled"`
	SnoozedUntilUTC      *time.Time `json:"snoozedUntilUtc"`
}

// SettingsResponse is returned by GET /api/user/settings.
type SettingsResponse struct {
	UserID               string     `json:"userId"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	SnoozedUntilUTC      *time.Time `json:"snoozedUntilUtc"`
	Eligible             bool       `json:"eligible"`
}

// Notify pushes a card to a user.
// POST /api/notify
func (h *Handler) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	userID := pickUserID(req.UserID, req.ObjectID)
	if userID == "" || !isJSONObject(req.MessageCardJSON) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and messageCardJson (object) are required"})
		return
	}

	res, err := h.sender.SendAlert(c.Request.Context(), userID, req.MessageCardJSON)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":     "sent",
			"deliveryId": res.DeliveryID,
			"sentAtUtc":  res.SentAt,
		})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoHandle):
		c.JSON(http.StatusNotFound, gin.H{"error": "user has no conversation with the bot"})
	default:
		body := gin.H{"error": "internal error while sending card"}
		if kind := transport.KindOf(err); kind != "" {
			body["kind"] = kind
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

// GetSettings returns the notification status of a user. Unknown users get the defaults.
// GET /api/user/settings?userId=...
func (h *Handler) GetSettings(c *gin.Context) {
	userID := pickUserID(c.Query("userId"), c.Query("objectId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: userId"})
		return
	}

	st, err := h.repo.GetNotificationStatus(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("get settings failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve user settings"})
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		UserID:               userID,
		NotificationsEnabled: st.Enabled,
		SnoozedUntilUTC:      utcPtr(st.SnoozedUntil),
		Eligible:             st.Eligible(h.now()),
	})
}

// UpdateSettings overwrites the notification status of an existing user.
// POST /api/user/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	userID := pickUserID(req.UserID, req.ObjectID)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId"})
		return
	}
	if req.NotificationsEnabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing notificationsEnabled"})
		return
	}
	if req.SnoozedUntilUTC != nil && !req.SnoozedUntilUTC.After(h.now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snoozedUntilUtc must be in the future"})
		return
	}

	log := h.log.With(zap.String("user_id", userID))
	err := h.repo.SetNotificationStatus(c.Request.Context(), userID, *req.NotificationsEnabled, utcPtr(req.SnoozedUntilUTC))
	switch {
	case err == nil:
		log.Info("settings updated", zap.Bool("enabled", *req.NotificationsEnabled), zap.Timep("snoozed_until", req.SnoozedUntilUTC))
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
	case errors.Is(err, domain.ErrNotFound):
		log.Debug("settings update for unknown user")
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	default:
		log.Error("update settings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user settings"})
	}
}

func pickUserID(userID, objectID string) string {
	if id := strings.TrimSpace(userID); id != "" {
		return id
	}
	return strings.TrimSpace(objectID)
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
