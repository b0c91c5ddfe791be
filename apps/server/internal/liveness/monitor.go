// Package liveness implements the background liveness monitor (C6): every
// tick it scans active rooms for seats that have gone quiet, kicks them,
// and closes any room that lost a seat. Grounded on
// original_source/src/core/manager.rs::start_monitoring (5s tick, 15s
// threshold, catch_unwind around the sweep) and the teacher's
// lobby.cleanupLoop ticker idiom.
package liveness

import (
	"log"
	"sync"
	"time"

	"squirrel/apps/server/internal/matchmaker"
)

const (
	defaultInterval       = 5 * time.Second
	defaultStaleThreshold = 15 * time.Second
)

// Monitor periodically evicts stale seats and closes the rooms they leave
// behind. A panic during a sweep is caught, logged and terminates the
// monitor — the process keeps running, it simply stops reaping.
type Monitor struct {
	manager        *matchmaker.Manager
	interval       time.Duration
	staleThreshold time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// New constructs a monitor with the spec's 5s/15s defaults.
func New(m *matchmaker.Manager) *Monitor {
	return &Monitor{
		manager:        m,
		interval:       defaultInterval,
		staleThreshold: defaultStaleThreshold,
		done:           make(chan struct{}),
	}
}

// Start spawns the background sweep loop.
func (mon *Monitor) Start() {
	go mon.run()
}

// Stop terminates the sweep loop.
func (mon *Monitor) Stop() {
	mon.stopOnce.Do(func() { close(mon.done) })
}

func (mon *Monitor) run() {
	ticker := time.NewTicker(mon.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !mon.safeSweep() {
				log.Printf("[Liveness] monitor terminating after panic")
				return
			}
		case <-mon.done:
			return
		}
	}
}

// safeSweep runs one sweep, recovering from any panic so the monitor never
// takes the process down with it. Returns false if a panic occurred.
func (mon *Monitor) safeSweep() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Liveness] sweep panic: %v", r)
			ok = false
		}
	}()
	mon.sweep()
	return true
}

func (mon *Monitor) sweep() {
	for _, r := range mon.manager.Rooms() {
		evicted := false
		for pos, s := range r.Seats {
			if s.StaleFor(mon.staleThreshold) {
				r.Kick(pos)
				evicted = true
			}
		}
		if evicted {
			mon.manager.CloseRoom(r.ID, "Timeout")
		}
	}
}
