package service

import (
	"log"
	"sync"
	"time"
)

// Evicter drops per-session state that has been idle for longer than idle
type Evicter interface {
	Evict(idle time.Duration) int
}

// Janitor periodically evicts idle sessions from the registries it watches
type Janitor struct {
	idle     time.Duration
	interval time.Duration
	targets  []Evicter
	stop     chan struct{}
	once     sync.Once
}

// NewJanitor creates a Janitor sweeping targets every interval.
// Call Start to begin sweeping.
func NewJanitor(idle, interval time.Duration, targets ...Evicter) *Janitor {
	return &Janitor{
		idle:     idle,
		interval: interval,
		targets:  targets,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Close
func (j *Janitor) Start() {
	go j.run()
}

func (j *Janitor) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-j.stop:
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep evicts idle sessions from every target once and returns the total dropped
func (j *Janitor) Sweep() int {
	total := 0
	for _, t := range j.targets {
		total += t.Evict(j.idle)
	}
	if total > 0 {
		log.Printf("🧹 Evicted %d idle sessions", total)
	}
	return total
}

// Close stops the sweep loop; safe to call more than once
func (j *Janitor) Close() {
	j.once.Do(func() { close(j.stop) })
}
