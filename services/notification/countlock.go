package notification

import (
	"hash/fnv"
	"sync"
)

const countStripes = 64

// countLocks hands out one mutex per user, striped over a fixed set.
type countLocks struct {
	stripes [countStripes]sync.Mutex
}

func (l *countLocks) lock(userID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	m := &l.stripes[h.Sum32()%countStripes]
	m.Lock()
	return m.Unlock
}
