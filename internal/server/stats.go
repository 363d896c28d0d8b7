package server

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zachkp/netfield/internal/field"
)

// BackdropStats summarizes streamed backdrop sessions.
type BackdropStats struct {
	ActiveSessions int            `json:"active_sessions"`
	TotalSessions  uint64         `json:"total_sessions"`
	FramesSent     uint64         `json:"frames_sent"`
	FramesDropped  uint64         `json:"frames_dropped"`
	Sessions       []SessionStats `json:"sessions"`
}

// SessionStats describes one live session.
type SessionStats struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Ticks     uint64    `json:"ticks"`
	StartedAt time.Time `json:"started_at"`
}

type trackedSession struct {
	sess     *field.Session
	viewport *field.Viewport
	started  time.Time
}

// tracker keeps the set of live sessions and stream counters.
type tracker struct {
	mu       sync.Mutex
	sessions map[string]trackedSession

	total   atomic.Uint64
	sent    atomic.Uint64
	dropped atomic.Uint64
}

func newTracker() *tracker {
	return &tracker{sessions: make(map[string]trackedSession)}
}

func (t *tracker) add(sess *field.Session, vp *field.Viewport) {
	t.mu.Lock()
	t.sessions[sess.ID()] = trackedSession{sess: sess, viewport: vp, started: time.Now()}
	t.mu.Unlock()
	t.total.Add(1)
}

func (t *tracker) remove(id string) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

func (t *tracker) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *tracker) snapshot() BackdropStats {
	t.mu.Lock()
	list := make([]SessionStats, 0, len(t.sessions))
	for id, ts := range t.sessions {
		w, h := ts.viewport.Size()
		list = append(list, SessionStats{
			ID:        id,
			State:     ts.sess.State().String(),
			Width:     w,
			Height:    h,
			Ticks:     ts.sess.Ticks(),
			StartedAt: ts.started,
		})
	}
	t.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].StartedAt.Before(list[j].StartedAt) })
	return BackdropStats{
		ActiveSessions: len(list),
		TotalSessions:  t.total.Load(),
		FramesSent:     t.sent.Load(),
		FramesDropped:  t.dropped.Load(),
		Sessions:       list,
	}
}
