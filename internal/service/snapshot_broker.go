package service

import (
	"sync"

	"github.com/noah-isme/teamhub-go-api/internal/models"
)

// Snapshot is an immutable copy of the four collections.
type Snapshot struct {
	Inventory   []models.InventoryItem
	Events      []models.Event
	Activities  []models.Activity
	TeamMembers []models.TeamMember
}

// snapshotBroker fans committed snapshots out to in-process subscribers. Each
// subscriber holds at most one pending snapshot and only ever sees the newest.
type snapshotBroker struct {
	mu          sync.Mutex
	subscribers map[chan Snapshot]struct{}
}

func newSnapshotBroker() *snapshotBroker {
	return &snapshotBroker{subscribers: make(map[chan Snapshot]struct{})}
}

func (b *snapshotBroker) subscribe(initial Snapshot) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	ch <- initial

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (b *snapshotBroker) publish(snapshot Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			// drop the stale pending snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
