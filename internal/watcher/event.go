package watcher

import "time"

// EventType is the kind of change reported for a file.
type EventType int

const (
	// EventAdded is emitted once a new or rewritten file has settled.
	EventAdded EventType = iota
	// EventRemoved is emitted when a file is deleted or moved away.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a settled change to a file in the watched directory.
type Event struct {
	Type EventType
	Path string

	// Size and ModTime are set for added files.
	Size    int64
	ModTime time.Time
}
