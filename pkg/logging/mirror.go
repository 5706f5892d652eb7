package logging

import "sync"

type mirror struct {
	min Level
	fn  func(Entry)
}

var (
	mirrorsMu sync.RWMutex
	mirrors   = map[int]mirror{}
	mirrorSeq int
)

// Mirror calls fn with every entry at or above min, from any logger, after
// it has been written. fn runs on the logging goroutine and must not block.
// The returned func removes the mirror.
func Mirror(min Level, fn func(Entry)) (remove func()) {
	mirrorsMu.Lock()
	mirrorSeq++
	id := mirrorSeq
	mirrors[id] = mirror{min: min, fn: fn}
	mirrorsMu.Unlock()

	return func() {
		mirrorsMu.Lock()
		delete(mirrors, id)
		mirrorsMu.Unlock()
	}
}

func notifyMirrors(e Entry) {
	mirrorsMu.RLock()
	var fns []func(Entry)
	for _, m := range mirrors {
		if e.Level >= m.min {
			fns = append(fns, m.fn)
		}
	}
	mirrorsMu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
