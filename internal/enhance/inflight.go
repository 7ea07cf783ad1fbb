package enhance

import (
	"sort"
	"sync"

	"moodboard/internal/domain"
)

type inflightEntry struct {
	gen  uint64
	task domain.EnhancementTask
}

// inflight owns the set of items being enhanced and their task state. Only
// the orchestrator mutates it, through the methods below.
type inflight struct {
	mu      sync.Mutex
	seq     uint64
	entries map[string]inflightEntry
}

func newInflight() *inflight {
	return &inflight{entries: make(map[string]inflightEntry)}
}

// reserve claims itemID for a new task. It fails while an earlier task for
// the item has not reached a terminal state. A terminal entry still waiting
// for cleanup is replaced.
func (r *inflight) reserve(itemID string, provider domain.ProviderID) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[itemID]; ok && !cur.task.Status.Terminal() {
		return 0, false
	}
	r.seq++
	r.entries[itemID] = inflightEntry{
		gen:  r.seq,
		task: domain.EnhancementTask{ItemID: itemID, Provider: provider, Status: domain.TaskIdle},
	}
	return r.seq, true
}

// update stores a task snapshot if gen still owns the item.
func (r *inflight) update(gen uint64, task domain.EnhancementTask) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[task.ItemID]
	if !ok || cur.gen != gen {
		return false
	}
	r.entries[task.ItemID] = inflightEntry{gen: gen, task: task}
	return true
}

// release removes the entry if gen still owns the item.
func (r *inflight) release(itemID string, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[itemID]
	if !ok || cur.gen != gen {
		return false
	}
	delete(r.entries, itemID)
	return true
}

func (r *inflight) get(itemID string) (domain.EnhancementTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.entries[itemID]
	return cur.task, ok
}

func (r *inflight) snapshot() []domain.EnhancementTask {
	r.mu.Lock()
	out := make([]domain.EnhancementTask, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.task)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
