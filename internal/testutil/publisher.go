package testutil

import (
	"context"
	"sync"

	"github.com/lalith-99/controlpanel/internal/models"
)

type PublishedStat struct {
	ShowToken string
	Stat      models.Stat
}

// RecordingPublisher keeps every published stat in memory. Set Err to make
// Publish fail.
type RecordingPublisher struct {
	mu        sync.Mutex
	published []PublishedStat
	Err       error
}

func (p *RecordingPublisher) Publish(_ context.Context, showToken string, stat models.Stat) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.published = append(p.published, PublishedStat{ShowToken: showToken, Stat: stat})
	return nil
}

func (p *RecordingPublisher) Published() []PublishedStat {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PublishedStat, len(p.published))
	copy(out, p.published)
	return out
}
