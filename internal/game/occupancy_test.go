package game

import (
	"errors"
	"testing"

	"cabin_boarding/internal/models"
)

func TestOccupancySoloLock(t *testing.T) {
	o := newOccupancy()
	if err := o.Place(1, 10); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := o.Place(2, 10); !errors.Is(err, ErrInvariant) {
		t.Fatalf("double acquisition should be an invariant error, got %v", err)
	}
	if err := o.Place(1, 11); !errors.Is(err, ErrInvariant) {
		t.Fatalf("placing twice should fail, got %v", err)
	}
	if o.CanEnter(2, 10) || !o.CanEnter(1, 10) {
		t.Fatalf("only the holder may stay on its node")
	}
	if err := o.Move(1, 11); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, ok := o.OccupantAt(10); ok {
		t.Fatalf("old node should be released")
	}
	if at, _ := o.NodeOf(1); at != 11 {
		t.Fatalf("passenger 1 on %d", at)
	}
	if err := o.Place(2, 10); err != nil {
		t.Fatalf("place after release: %v", err)
	}
	if err := o.Move(2, 11); !errors.Is(err, ErrInvariant) {
		t.Fatalf("moving onto a held node should fail, got %v", err)
	}
	if err := o.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestOccupancyGroupLock(t *testing.T) {
	o := newOccupancy()
	o.Place(1, 1)
	o.Place(2, 2)
	o.Place(3, 5)

	if o.LockGroup(7, []models.NodeID{1, 2, 5}, []models.PassengerID{1, 2}) {
		t.Fatalf("lock over a node held by an outsider must fail")
	}
	if o.GroupLocked(1) || o.GroupLocked(2) {
		t.Fatalf("failed lock must not claim anything")
	}

	if !o.LockGroup(7, []models.NodeID{1, 2, 3}, []models.PassengerID{1, 2}) {
		t.Fatalf("lock should succeed")
	}
	if o.LockGroup(8, []models.NodeID{3, 4}, []models.PassengerID{3}) {
		t.Fatalf("overlapping group lock must fail")
	}
	if o.CanEnter(3, 3) {
		t.Fatalf("outsider entered a group-locked node")
	}
	if !o.CanEnter(1, 3) {
		t.Fatalf("member should enter a free group-locked node")
	}
	if err := o.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}

	if err := o.UnlockGroup(8, []models.NodeID{1}); !errors.Is(err, ErrInvariant) {
		t.Fatalf("unlock by a non-holder should fail, got %v", err)
	}
	if err := o.UnlockGroup(7, []models.NodeID{1, 2, 3}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !o.CanEnter(3, 3) {
		t.Fatalf("node 3 should be free after unlock")
	}
}
