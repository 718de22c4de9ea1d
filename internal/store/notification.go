package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/veydran/directorate/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationCols = `id, user_id, message, ticket_id, read, created_at`

func scanNotification(scanner interface{ Scan(...any) error }) (*model.Notification, error) {
	var n model.Notification
	var ticketID sql.NullString
	var read int

	err := scanner.Scan(&n.ID, &n.UserID, &n.Message, &ticketID, &read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	n.TicketID = idFromNull(ticketID)
	n.Read = read != 0
	return &n, nil
}

func (s *NotificationStore) Create(userID model.ID, message string, ticketID *model.ID) (*model.Notification, error) {
	id := model.NewID()
	now := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, message, ticket_id, read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		id, userID, message, nullID(ticketID), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id model.ID) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListByUser returns a user's notifications, newest first.
func (s *NotificationStore) ListByUser(userID model.ID) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM notifications WHERE user_id = ? ORDER BY rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the read flag and returns the updated notification, or nil
// when the id does not resolve.
func (s *NotificationStore) MarkRead(id model.ID) (*model.Notification, error) {
	res, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}
