package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
	"github.com/MiniBodegas/Plataforma-sub000/internal/service"
)

// NotificationHandler exposes the inbox: listing, unread counts and
// read-flag mutation.  All routes require an authenticated user and
// only ever touch that user's own rows.
type NotificationHandler struct {
	Inbox *service.Inbox

	// SeenDwell, when positive, marks the unread portion of a listed
	// page as read after the dwell elapses, so badges persist briefly
	// after the inbox is opened.
	SeenDwell time.Duration
}

func NewNotificationHandler(inbox *service.Inbox, seenDwell time.Duration) *NotificationHandler {
	if inbox == nil {
		panic("nil inbox passed to NewNotificationHandler")
	}
	return &NotificationHandler{Inbox: inbox, SeenDwell: seenDwell}
}

type notificationResp struct {
	ID            uint64  `json:"id"`
	Tipo          string  `json:"tipo"`
	Title         string  `json:"title"`
	Message       string  `json:"message"`
	ReservationID *uint64 `json:"reservation_id,omitempty"`
	IsRead        bool    `json:"is_read"`
	CreatedAt     string  `json:"created_at"`
}

func toNotificationResp(n *model.Notification) notificationResp {
	return notificationResp{
		ID:            n.ID,
		Tipo:          n.Tipo,
		Title:         n.Title,
		Message:       n.Message,
		ReservationID: n.ReservationID,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
}

// List handles GET /v1/notifications.  Opening the inbox schedules the
// returned unread ids to flip to read after the seen dwell, unless the
// client passes ?keep_unread=1.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	items, err := h.Inbox.List(c.Request().Context(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	out := make([]notificationResp, 0, len(items))
	var unreadIDs []uint64
	for i := range items {
		out = append(out, toNotificationResp(&items[i]))
		if !items[i].IsRead {
			unreadIDs = append(unreadIDs, items[i].ID)
		}
	}
	if h.SeenDwell > 0 && c.QueryParam("keep_unread") == "" {
		h.Inbox.ScheduleSeen(userID, unreadIDs, h.SeenDwell)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "count": len(out)})
}

// UnreadCount handles GET /v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, err := h.Inbox.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"unread": n})
}

// MarkRead handles POST /v1/notifications/:id/read.  Marking an
// already-read notification succeeds as a no-op.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	if err := h.Inbox.MarkRead(c.Request().Context(), userID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark notification read"})
	}
	return c.JSON(http.StatusOK, echo.Map{"read": id})
}

// MarkAllRead handles POST /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Inbox.MarkAllRead(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark notifications read"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
