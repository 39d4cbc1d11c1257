// Package lock provides a per-id mutex. The completion reconciler uses it to
// serialize the "are all transfers complete" check for a coordinator.
package lock

import (
	"sync"

	"github.com/apex/log"
)

type IdLocker struct {
	mapMutex sync.Mutex
	idMap    map[int]*sync.Mutex
}

func NewIdLocker() *IdLocker {
	return &IdLocker{
		idMap: make(map[int]*sync.Mutex),
	}
}

func (l *IdLocker) AcquireLock(id int) {
	l.mapMutex.Lock()
	idMutex, ok := l.idMap[id]
	if !ok {
		idMutex = &sync.Mutex{}
		l.idMap[id] = idMutex
	}
	l.mapMutex.Unlock()

	idMutex.Lock()
}

func (l *IdLocker) ReleaseLock(id int) {
	l.mapMutex.Lock()
	idMutex, ok := l.idMap[id]
	l.mapMutex.Unlock()

	if !ok {
		log.Errorf("ReleaseLock called on id (%d) with no mutex", id)

		return
	}

	idMutex.Unlock()
}

func (l *IdLocker) WithLock(id int, f func() error) error {
	l.AcquireLock(id)
	defer l.ReleaseLock(id)
	return f()
}
