package source

import "github.com/penwyp/go-replay-player/internal/core/model"

// Source streams events appended to a live recording. The channel is closed
// once the source stops, either through Close or because the remote end went
// away.
type Source interface {
	Events() <-chan model.SourceEvent
	Close() error
}

const eventBuffer = 256
