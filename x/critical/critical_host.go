//go:build !(rp2040 || rp2350)

package critical

import "sync"

var section sync.Mutex

type state struct{}

func enter() state {
	section.Lock()
	return state{}
}

func exit(state) { section.Unlock() }
