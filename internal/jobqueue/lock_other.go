//go:build !unix

package jobqueue

import "sync"

// processLocks substitutes for file locking on platforms without flock: it
// only protects concurrent goroutines within this process, not other
// processes. Sufficient for local testing, not for real multi-host queues.
var processLocks sync.Map

// lockPath acquires an in-process mutex keyed by path and returns a function
// that releases it.
func lockPath(path string) (func(), error) {
	m, _ := processLocks.LoadOrStore(path, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock, nil
}
