package domain

import "time"

// Activity is one row of the append-only "recent" feed. A row is appended
// per transition (creation, check-in, check-out): the feed is a log, not
// a mutated projection. CreatedAt is copied from the originating
// reservation and, together with Email, is the only link back to the
// detail row: the feed carries no reservation id. Two reservations by the
// same visitor created in the same clock instant would collide; the
// dashboards that read this data depend on the (email, created_at) match,
// so the key is preserved as is.
type Activity struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Purpose   Kind       `json:"purpose"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
}

// ActivityDetail pairs a feed row with its resolved reservation, when the
// (email, created_at) lookup finds one.
type ActivityDetail struct {
	Activity
	Reservation *Reservation `json:"reservation,omitempty"`
}
