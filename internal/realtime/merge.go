package realtime

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
)

// Feed is one subscriber's view of a clinic's bookings. It is not safe for
// concurrent use; each connection owns its feed.
type Feed struct {
	rows map[uuid.UUID]*model.Booking
}

func NewFeed(initial []*model.Booking) *Feed {
	f := &Feed{rows: make(map[uuid.UUID]*model.Booking, len(initial))}
	for _, b := range initial {
		f.rows[b.ID] = b
	}
	return f
}

// Merge applies a change event and reports whether the view changed.
// Rows are last-write-wins on updated_at: an event older than the row held is
// ignored. An insert for a row already present is treated as an update.
func (f *Feed) Merge(ev model.BookingEvent) bool {
	if ev.Booking == nil {
		return false
	}
	id := ev.Booking.ID

	switch ev.Op {
	case model.BookingOpDelete:
		if _, ok := f.rows[id]; !ok {
			return false
		}
		delete(f.rows, id)
		return true

	case model.BookingOpInsert, model.BookingOpUpdate:
		if current, ok := f.rows[id]; ok && ev.Booking.UpdatedAt.Before(current.UpdatedAt) {
			return false
		}
		f.rows[id] = ev.Booking
		return true
	}
	return false
}

func (f *Feed) Len() int {
	return len(f.rows)
}

// Rows returns the view newest first.
func (f *Feed) Rows() []*model.Booking {
	out := make([]*model.Booking, 0, len(f.rows))
	for _, b := range f.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
