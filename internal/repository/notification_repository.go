package repository

import (
	"context"
	"database/sql"

	"github.com/MiniBodegas/Plataforma-sub000/internal/model"
)

// NotificationRepo persists in-app notifications.  Rows are append-only
// except for the read flag, which the inbox flips on behalf of the
// recipient.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Insert appends a notification row and populates its generated ID.
func (r *NotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (recipient_id, tipo, title, message, reservation_id)
	           VALUES (?, ?, ?, ?, ?)`
	var resArg any
	if n.ReservationID != nil {
		resArg = *n.ReservationID
	}
	result, err := r.db.ExecContext(ctx, q, n.RecipientID, n.Tipo, n.Title, n.Message, resArg)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	const sel = `SELECT created_at FROM notifications WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, n.ID).Scan(&n.CreatedAt)
}

// CountUnread returns the recipient's unread total with a single
// aggregate query.  The inbox badge polls this, so it must stay one
// cheap round-trip rather than a fetch-then-count.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`
	var n int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

// ListByRecipient returns the newest notifications for a user, capped
// at limit (a non-positive limit falls back to 50).
func (r *NotificationRepo) ListByRecipient(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, recipient_id, tipo, title, message, reservation_id, is_read, read_at, created_at
	           FROM notifications
	           WHERE recipient_id = ?
	           ORDER BY created_at DESC, id DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		var resID sql.NullInt64
		var readAt sql.NullTime
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Tipo, &n.Title, &n.Message,
			&resID, &n.IsRead, &readAt, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if resID.Valid {
			rid := uint64(resID.Int64)
			n.ReservationID = &rid
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead sets the read flag on one notification owned by the given
// user.  Marking an already-read notification is a successful no-op;
// the guard on is_read keeps read_at at its first value.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	const q = `UPDATE notifications SET is_read = 1, read_at = NOW()
	           WHERE id = ? AND recipient_id = ? AND is_read = 0`
	_, err := r.db.ExecContext(ctx, q, notificationID, userID)
	return err
}

// MarkManyRead sets the read flag on a batch of ids for one user in a
// single statement.  Ids already read, unknown, or owned by someone
// else are silently skipped.
func (r *NotificationRepo) MarkManyRead(ctx context.Context, userID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q := `UPDATE notifications SET is_read = 1, read_at = NOW()
	      WHERE recipient_id = ? AND is_read = 0 AND id IN (`
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for i, id := range ids {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, id)
	}
	q += ")"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// MarkAllRead sets the read flag on everything unread for a user.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	const q = `UPDATE notifications SET is_read = 1, read_at = NOW()
	           WHERE recipient_id = ? AND is_read = 0`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
