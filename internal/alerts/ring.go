package alerts

import "trade-journal-go/internal/models"

// ring is a fixed-capacity circular buffer of alerts. When full, a push
// overwrites the oldest entry. It only mirrors durable rows; evicting
// from the ring never touches storage.
type ring struct {
	alerts []models.Alert
	size   int
	head   int // next slot to write
	count  int
}

func newRing(size int) *ring {
	if size <= 0 {
		panic("alert ring size must be positive")
	}
	return &ring{
		alerts: make([]models.Alert, size),
		size:   size,
	}
}

// push adds an alert as the newest entry, evicting the oldest when the
// ring is at capacity.
func (r *ring) push(a models.Alert) {
	r.alerts[r.head] = a
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// newestFirst returns up to limit alerts, newest first.
func (r *ring) newestFirst(limit int) []models.Alert {
	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Alert, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.head - 1 - i + r.size) % r.size
		out = append(out, r.alerts[idx])
	}
	return out
}

// acknowledge flips the cached copy of the alert with the given id, if
// it is still in the ring.
func (r *ring) acknowledge(id uint) bool {
	for i := 0; i < r.count; i++ {
		idx := (r.head - 1 - i + r.size) % r.size
		if r.alerts[idx].ID == id {
			r.alerts[idx].Acknowledged = true
			return true
		}
	}
	return false
}

// len reports how many alerts the ring currently holds.
func (r *ring) len() int {
	return r.count
}
