package multimodal

import (
	"hash/fnv"
	"sync"
)

// CachedDecision is the last long-distance mode chosen for a traveler
type CachedDecision struct {
	Mode           TransportMode
	DistanceMeters float64
	// Number of selector queries which ended up in this entry
	Decisions int
}

// DecisionStore keeps one decision per traveler.
// Update must run fn and store its result atomically with respect to other calls for the same person.
type DecisionStore interface {
	Update(person PersonID, fn func(prev CachedDecision, found bool) CachedDecision) CachedDecision
	Get(person PersonID) (CachedDecision, bool)
	Len() int
	Snapshot() map[PersonID]CachedDecision
	Restore(decisions map[PersonID]CachedDecision)
}

const defaultDecisionShards = 64

type decisionShard struct {
	mu    sync.Mutex
	items map[PersonID]CachedDecision
}

// ShardedDecisionStore splits travelers across mutex guarded shards so workers routing different travelers rarely contend
type ShardedDecisionStore struct {
	shards []*decisionShard
}

func NewShardedDecisionStore(shardsNum int) *ShardedDecisionStore {
	if shardsNum <= 0 {
		shardsNum = defaultDecisionShards
	}
	store := &ShardedDecisionStore{
		shards: make([]*decisionShard, shardsNum),
	}
	for i := range store.shards {
		store.shards[i] = &decisionShard{items: make(map[PersonID]CachedDecision)}
	}
	return store
}

func (store *ShardedDecisionStore) shard(person PersonID) *decisionShard {
	h := fnv.New32a()
	h.Write([]byte(person))
	return store.shards[h.Sum32()%uint32(len(store.shards))]
}

func (store *ShardedDecisionStore) Update(person PersonID, fn func(prev CachedDecision, found bool) CachedDecision) CachedDecision {
	shard := store.shard(person)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	prev, found := shard.items[person]
	next := fn(prev, found)
	shard.items[person] = next
	return next
}

func (store *ShardedDecisionStore) Get(person PersonID) (CachedDecision, bool) {
	shard := store.shard(person)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	decision, ok := shard.items[person]
	return decision, ok
}

func (store *ShardedDecisionStore) Len() int {
	total := 0
	for _, shard := range store.shards {
		shard.mu.Lock()
		total += len(shard.items)
		shard.mu.Unlock()
	}
	return total
}

// Snapshot returns copy of all entries. Shards are locked one by one, so snapshot taken under concurrent updates is per-shard consistent only
func (store *ShardedDecisionStore) Snapshot() map[PersonID]CachedDecision {
	snapshot := make(map[PersonID]CachedDecision)
	for _, shard := range store.shards {
		shard.mu.Lock()
		for person, decision := range shard.items {
			snapshot[person] = decision
		}
		shard.mu.Unlock()
	}
	return snapshot
}

// Restore puts given decisions into the store overwriting existing entries of the same travelers
func (store *ShardedDecisionStore) Restore(decisions map[PersonID]CachedDecision) {
	for person, decision := range decisions {
		shard := store.shard(person)
		shard.mu.Lock()
		shard.items[person] = decision
		shard.mu.Unlock()
	}
}
