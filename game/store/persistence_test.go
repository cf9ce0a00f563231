package store

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/ludo/game/engine"
	"github.com/wricardo/mcp-training/ludo/game/service"
)

func playedSimulation(t *testing.T) *service.Simulation {
	t.Helper()
	g, err := engine.NewGame([]engine.Quadrant{engine.QuadrantA, engine.QuadrantB})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	turns := []engine.Turn{{Player: engine.QuadrantA, Roll: 6}, {Player: engine.QuadrantA, Roll: 5}}
	if err := g.Play(turns); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	return &service.Simulation{
		ID:        uuid.NewString(),
		Players:   []engine.Quadrant{engine.QuadrantA, engine.QuadrantB},
		Turns:     turns,
		Positions: g.Positions(),
		History:   g.History(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestFilePersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	persistence, err := NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	sim := playedSimulation(t)

	t.Run("Save and Load", func(t *testing.T) {
		if err := persistence.Save(sim); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !persistence.Exists(sim.ID) {
			t.Error("Simulation file should exist after save")
		}

		loaded, err := persistence.Load(sim.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !slices.Equal(loaded.Positions, []string{"5", "H", "H", "H"}) {
			t.Errorf("Unexpected positions %v", loaded.Positions)
		}
		if len(loaded.History) != 0 {
			t.Errorf("Turn trace should not be persisted, got %d records", len(loaded.History))
		}
		if len(sim.History) != 2 {
			t.Error("Save must not modify the caller's simulation")
		}
		if len(loaded.Turns) != 2 || loaded.Turns[0].Roll != 6 {
			t.Errorf("Unexpected turns %+v", loaded.Turns)
		}
		if !loaded.CreatedAt.Equal(sim.CreatedAt) {
			t.Errorf("Expected created at %v, got %v", sim.CreatedAt, loaded.CreatedAt)
		}
	})

	t.Run("ListAll skips foreign files", func(t *testing.T) {
		os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
		os.WriteFile(filepath.Join(dir, "not-a-uuid.json"), []byte("{}"), 0644)

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if !slices.Equal(ids, []string{sim.ID}) {
			t.Errorf("Expected [%s], got %v", sim.ID, ids)
		}
	})

	t.Run("rejects IDs that are not UUIDs", func(t *testing.T) {
		if _, err := persistence.Load("../escape"); !errors.Is(err, ErrSimulationNotFound) {
			t.Errorf("Expected ErrSimulationNotFound, got %v", err)
		}
		if persistence.Exists("../escape") {
			t.Error("Exists should be false for invalid IDs")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := persistence.Delete(sim.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists(sim.ID) {
			t.Error("Simulation file should be removed")
		}
		if err := persistence.Delete(sim.ID); !errors.Is(err, ErrSimulationNotFound) {
			t.Errorf("Expected ErrSimulationNotFound on second delete, got %v", err)
		}
		if _, err := persistence.Load(sim.ID); !errors.Is(err, ErrSimulationNotFound) {
			t.Errorf("Expected ErrSimulationNotFound on load, got %v", err)
		}
	})

	t.Run("Save nil", func(t *testing.T) {
		if err := persistence.Save(nil); !errors.Is(err, ErrNilSimulation) {
			t.Errorf("Expected ErrNilSimulation, got %v", err)
		}
	})
}

func TestManagerWithPersistence(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager := NewManagerWithPersistence(time.Hour, persistence)

	created, err := manager.Create(playedSimulation(t))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("Create saves", func(t *testing.T) {
		if !persistence.Exists(created.ID) {
			t.Error("Simulation should be saved on creation")
		}
	})

	t.Run("Get loads from persistence", func(t *testing.T) {
		fresh := NewManagerWithPersistence(time.Hour, persistence)
		sim, err := fresh.Get(created.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if sim.ID != created.ID {
			t.Errorf("Expected ID %s, got %s", created.ID, sim.ID)
		}
		if fresh.Count() != 1 {
			t.Errorf("Expected loaded simulation to be cached, count %d", fresh.Count())
		}
	})

	t.Run("LoadPersisted", func(t *testing.T) {
		fresh := NewManagerWithPersistence(time.Hour, persistence)
		loaded, err := fresh.LoadPersisted()
		if err != nil {
			t.Fatalf("LoadPersisted failed: %v", err)
		}
		if loaded != 1 {
			t.Errorf("Expected 1 loaded simulation, got %d", loaded)
		}
	})

	t.Run("UpdateLastAccessed saves", func(t *testing.T) {
		later := created.LastAccessedAt.Add(time.Minute)
		manager.now = func() time.Time { return later }
		defer func() { manager.now = time.Now }()

		if err := manager.UpdateLastAccessed(created.ID); err != nil {
			t.Fatalf("UpdateLastAccessed failed: %v", err)
		}
		onDisk, err := persistence.Load(created.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !onDisk.LastAccessedAt.Equal(later) {
			t.Errorf("Expected persisted access time %v, got %v", later, onDisk.LastAccessedAt)
		}
	})

	t.Run("CleanupExpired removes files", func(t *testing.T) {
		expiring, _ := manager.Create(playedSimulation(t))
		manager.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
		defer func() { manager.now = time.Now }()

		if removed := manager.CleanupExpired(time.Hour); removed != 2 {
			t.Errorf("Expected 2 expired simulations, got %d", removed)
		}
		if persistence.Exists(expiring.ID) || persistence.Exists(created.ID) {
			t.Error("Expired simulations should be removed from disk")
		}
	})

	t.Run("Delete removes persisted only simulations", func(t *testing.T) {
		sim := playedSimulation(t)
		if err := persistence.Save(sim); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := manager.Delete(sim.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists(sim.ID) {
			t.Error("Simulation file should be removed")
		}
		if err := manager.Delete(sim.ID); !errors.Is(err, ErrSimulationNotFound) {
			t.Errorf("Expected ErrSimulationNotFound, got %v", err)
		}
	})
}
