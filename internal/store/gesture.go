package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// GestureKind represents how a gesture reports results (discrete or continuous).
type GestureKind string

const (
	// GestureKindDiscrete represents a detected/confidence gesture.
	GestureKindDiscrete GestureKind = "discrete"
	// GestureKindContinuous represents a progress gesture.
	GestureKindContinuous GestureKind = "continuous"
)

// Gesture represents a catalogued gesture definition.
type Gesture struct {
	ID        string
	Name      string
	Kind      GestureKind
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GestureRepository provides catalog operations for gestures.
type GestureRepository struct {
	db *sql.DB
}

// Gestures returns the gesture repository for this store.
func (s *Store) Gestures() *GestureRepository {
	return &GestureRepository{db: s.db}
}

const gestureColumns = `id, name, kind, active, created_at, updated_at`

func scanGesture(row interface{ Scan(...any) error }) (*Gesture, error) {
	g := &Gesture{}
	var kind string
	var active int

	if err := row.Scan(&g.ID, &g.Name, &kind, &active, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}

	g.Kind = GestureKind(kind)
	g.Active = active != 0
	return g, nil
}

// Create inserts a new gesture. An empty ID is filled with a new UUID.
func (r *GestureRepository) Create(g *Gesture) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO gestures (id, name, kind, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, string(g.Kind), boolToInt(g.Active), g.CreatedAt, g.UpdatedAt,
	)
	return err
}

// GetByID retrieves a gesture by its ID.
func (r *GestureRepository) GetByID(id string) (*Gesture, error) {
	g, err := scanGesture(r.db.QueryRow(
		`SELECT `+gestureColumns+` FROM gestures WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// GetByName retrieves a gesture by its name.
func (r *GestureRepository) GetByName(name string) (*Gesture, error) {
	g, err := scanGesture(r.db.QueryRow(
		`SELECT `+gestureColumns+` FROM gestures WHERE name = ?`, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// List retrieves all gestures ordered by name.
// When activeOnly is set, gestures missing from the last loaded database are skipped.
func (r *GestureRepository) List(activeOnly bool) ([]*Gesture, error) {
	query := `SELECT ` + gestureColumns + ` FROM gestures`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gestures []*Gesture
	for rows.Next() {
		g, err := scanGesture(rows)
		if err != nil {
			return nil, err
		}
		gestures = append(gestures, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gestures, nil
}

// Sync makes the catalog mirror a freshly loaded gesture database.
// Gestures in entries are created or updated and marked active; all others
// are marked inactive. Returns the active gestures keyed by name.
func (r *GestureRepository) Sync(entries []Gesture) (map[string]*Gesture, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.Exec(`UPDATE gestures SET active = 0, updated_at = ? WHERE active = 1`, now); err != nil {
		return nil, err
	}

	synced := make(map[string]*Gesture, len(entries))
	for _, e := range entries {
		g, err := scanGesture(tx.QueryRow(
			`SELECT `+gestureColumns+` FROM gestures WHERE name = ?`, e.Name,
		))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			g = &Gesture{
				ID:        uuid.New().String(),
				Name:      e.Name,
				Kind:      e.Kind,
				CreatedAt: now,
			}
			_, err = tx.Exec(
				`INSERT INTO gestures (id, name, kind, active, created_at, updated_at)
				 VALUES (?, ?, ?, 1, ?, ?)`,
				g.ID, g.Name, string(g.Kind), now, now,
			)
		case err == nil:
			g.Kind = e.Kind
			_, err = tx.Exec(
				`UPDATE gestures SET kind = ?, active = 1, updated_at = ? WHERE id = ?`,
				string(g.Kind), now, g.ID,
			)
		}
		if err != nil {
			return nil, err
		}

		g.Active = true
		g.UpdatedAt = now
		synced[g.Name] = g
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return synced, nil
}

// Delete removes a gesture from the catalog by its ID.
func (r *GestureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM gestures WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
