package domain

// Queue is a FIFO of pending tracks; insertion order is play order.
// Queue is not safe for concurrent use; stores guard it.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() *Queue {
	return &Queue{
		tracks: make([]*Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// PushBack appends track(s) to the end of the queue.
func (q *Queue) PushBack(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopFront removes and returns the first track, or nil if the queue is empty.
func (q *Queue) PopFront() *Track {
	if q.IsEmpty() {
		return nil
	}

	track := q.tracks[0]
	q.tracks[0] = nil
	q.tracks = q.tracks[1:]
	return track
}

// Peek returns the first track without removing it, or nil if the queue is empty.
func (q *Queue) Peek() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.tracks[0]
}

// DropFirst removes up to n tracks from the front and returns how many were removed.
func (q *Queue) DropFirst(n int) int {
	if n <= 0 {
		return 0
	}
	n = min(n, q.Len())

	for i := range n {
		q.tracks[i] = nil
	}
	q.tracks = q.tracks[n:]
	return n
}

// List returns a copy of all tracks in the queue.
func (q *Queue) List() []*Track {
	result := make([]*Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]*Track, 0)
}
