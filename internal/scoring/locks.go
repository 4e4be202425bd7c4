package scoring

import (
	"hash/fnv"
	"sync"

	id "ctfbot/pkg/domain"
)

// pairLocks serializes submissions for the same (team, challenge) pair
// without a global lock: pairs hash into a bounded pool of mutexes, so two
// unrelated pairs collide only when their hashes do, and never all on one
// mutex.
type pairLocks struct {
	pool []sync.Mutex
}

func newPairLocks(size int) *pairLocks {
	if size <= 0 {
		size = 256
	}
	return &pairLocks{pool: make([]sync.Mutex, size)}
}

func (l *pairLocks) lock(teamID id.TeamID, challengeID id.ChallengeID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(teamID[:])
	h.Write(challengeID[:])
	mu := &l.pool[h.Sum32()%uint32(len(l.pool))]
	mu.Lock()
	return mu
}
