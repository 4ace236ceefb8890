package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kinectosc-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestGestureRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	gesture := &Gesture{
		ID:     "test-gesture-1",
		Name:   "Wave_Right",
		Kind:   GestureKindDiscrete,
		Active: true,
	}

	if err := repo.Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	if gesture.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}
	if gesture.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after create")
	}

	retrieved, err := repo.GetByID("test-gesture-1")
	if err != nil {
		t.Fatalf("failed to get gesture by ID: %v", err)
	}

	if retrieved.Name != gesture.Name {
		t.Errorf("Name mismatch: got %q, want %q", retrieved.Name, gesture.Name)
	}
	if retrieved.Kind != gesture.Kind {
		t.Errorf("Kind mismatch: got %q, want %q", retrieved.Kind, gesture.Kind)
	}
	if !retrieved.Active {
		t.Error("Active should be true")
	}
}

func TestGestureRepository_CreateGeneratesID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	gesture := &Gesture{Name: "Lean", Kind: GestureKindContinuous}
	if err := repo.Create(gesture); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}
	if gesture.ID == "" {
		t.Fatal("ID should be generated")
	}

	if _, err := repo.GetByName("Lean"); err != nil {
		t.Errorf("GetByName() error = %v", err)
	}
}

func TestGestureRepository_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	if err := repo.Create(&Gesture{Name: "Wave", Kind: GestureKindDiscrete}); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}
	if err := repo.Create(&Gesture{Name: "Wave", Kind: GestureKindDiscrete}); err == nil {
		t.Error("expected error for duplicate gesture name")
	}
}

func TestGestureRepository_InvalidKind(t *testing.T) {
	s := newTestStore(t)

	err := s.Gestures().Create(&Gesture{Name: "Bad", Kind: GestureKind("static")})
	if err == nil {
		t.Error("expected error for invalid kind")
	}
}

func TestGestureRepository_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByName("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestGestureRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	for _, g := range []*Gesture{
		{Name: "Wave", Kind: GestureKindDiscrete, Active: true},
		{Name: "Clap", Kind: GestureKindDiscrete, Active: false},
		{Name: "Lean", Kind: GestureKindContinuous, Active: true},
	} {
		if err := repo.Create(g); err != nil {
			t.Fatalf("failed to create gesture: %v", err)
		}
	}

	all, err := repo.List(false)
	if err != nil {
		t.Fatalf("List(false) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(false) returned %d gestures, want 3", len(all))
	}
	want := []string{"Clap", "Lean", "Wave"}
	for i, g := range all {
		if g.Name != want[i] {
			t.Errorf("List(false)[%d] = %q, want %q", i, g.Name, want[i])
		}
	}

	active, err := repo.List(true)
	if err != nil {
		t.Fatalf("List(true) error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("List(true) returned %d gestures, want 2", len(active))
	}
}

func TestGestureRepository_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	gestures, err := s.Gestures().List(false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(gestures) != 0 {
		t.Errorf("List() returned %d gestures, want 0", len(gestures))
	}
}

func TestGestureRepository_Sync(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	first, err := repo.Sync([]Gesture{
		{Name: "Wave", Kind: GestureKindDiscrete},
		{Name: "Clap", Kind: GestureKindDiscrete},
	})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("Sync() returned %d gestures, want 2", len(first))
	}
	waveID := first["Wave"].ID

	second, err := repo.Sync([]Gesture{
		{Name: "Wave", Kind: GestureKindContinuous},
		{Name: "Lean", Kind: GestureKindContinuous},
	})
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if second["Wave"].ID != waveID {
		t.Errorf("Wave ID changed across syncs: %q -> %q", waveID, second["Wave"].ID)
	}
	if second["Wave"].Kind != GestureKindContinuous {
		t.Errorf("Wave kind = %q, want continuous", second["Wave"].Kind)
	}

	clap, err := repo.GetByName("Clap")
	if err != nil {
		t.Fatalf("GetByName(Clap) error = %v", err)
	}
	if clap.Active {
		t.Error("Clap should be inactive after it left the database")
	}

	active, err := repo.List(true)
	if err != nil {
		t.Fatalf("List(true) error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("List(true) returned %d gestures, want 2", len(active))
	}
}

func TestGestureRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Gestures()

	g := &Gesture{Name: "Wave", Kind: GestureKindDiscrete, Active: true}
	if err := repo.Create(g); err != nil {
		t.Fatalf("failed to create gesture: %v", err)
	}

	if err := repo.Delete(g.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
