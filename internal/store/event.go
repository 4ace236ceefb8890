package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DefaultEventLimit is the number of events ListRecent returns for a non-positive limit.
const DefaultEventLimit = 50

// Event represents a forwarded gesture message.
type Event struct {
	ID          string
	GestureID   string
	GestureName string
	Address     string
	Value       float64
	Slot        int
	TrackingID  uint64
	Target      string
	CreatedAt   time.Time
}

// EventRepository provides access to the forwarded event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// CreateBatch inserts events in a single transaction. A GestureID that is no
// longer in the catalog is stored as NULL; the event keeps its gesture name.
func (r *EventRepository) CreateBatch(events []*Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO events (id, gesture_id, gesture_name, address, value, slot, tracking_id, target, created_at)
		 VALUES (?, (SELECT id FROM gestures WHERE id = ?), ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}

		var gestureID any
		if e.GestureID != "" {
			gestureID = e.GestureID
		}

		if _, err := stmt.Exec(
			e.ID, gestureID, e.GestureName, e.Address, e.Value, e.Slot, int64(e.TrackingID), e.Target, e.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecent returns up to limit events, newest first.
func (r *EventRepository) ListRecent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := r.db.Query(
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ListByGesture returns up to limit events logged for one catalog entry,
// newest first.
func (r *EventRepository) ListByGesture(gestureID string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	rows, err := r.db.Query(
		`SELECT `+eventColumns+` FROM events WHERE gesture_id = ? ORDER BY created_at DESC LIMIT ?`,
		gestureID, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// Count returns the number of logged events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// CountByGesture returns the number of logged events per gesture id.
// Events whose gesture was removed from the catalog are not counted.
func (r *EventRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT gesture_id, COUNT(*) FROM events WHERE gesture_id IS NOT NULL GROUP BY gesture_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

const eventColumns = `id, COALESCE(gesture_id, ''), gesture_name, address, value, slot, tracking_id, target, created_at`

// scanEvents reads rows selected with eventColumns and closes them.
func scanEvents(rows *sql.Rows) ([]*Event, error) {
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var trackingID int64
		if err := rows.Scan(
			&e.ID, &e.GestureID, &e.GestureName, &e.Address, &e.Value, &e.Slot, &trackingID, &e.Target, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.TrackingID = uint64(trackingID)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
