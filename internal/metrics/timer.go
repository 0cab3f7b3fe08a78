package metrics

import (
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// Timer measures one operation, such as an HTTP request, and reports it as a
// timing metric when stopped.
type Timer struct {
	publisher types.Publisher
	name      string
	tags      []string
	started   time.Time
}

// NewTimer starts a timer. With a nil publisher Stop only measures.
func NewTimer(publisher types.Publisher, name string, tags ...string) *Timer {
	return &Timer{publisher: publisher, name: name, tags: tags, started: time.Now()}
}

// Stop reports the elapsed time with the start tags plus extraTags, which
// carry what is known only once the operation finished (status, outcome).
func (t *Timer) Stop(extraTags ...string) time.Duration {
	elapsed := time.Since(t.started)
	if t.publisher != nil {
		t.publisher.Timing(t.name, elapsed, MergeTags(t.tags, extraTags)...)
	}
	return elapsed
}
