package domain

import (
	"fmt"
	"time"
)

// Kind identifies one of the four reservation purposes. Each kind has its
// own table and its own detail fields; every operation dispatches through
// this one enum rather than repeating string-keyed table maps.
type Kind string

const (
	KindVisit     Kind = "visit"
	KindPitch     Kind = "pitch"
	KindInterview Kind = "interview"
	KindTech      Kind = "tech"
)

// KindPriority is the fixed scan order for resolving a visitor's current
// reservation. When more than one active row exists across kinds
// (abnormal), the first kind in this order wins, deterministically.
var KindPriority = [4]Kind{KindVisit, KindPitch, KindInterview, KindTech}

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindVisit, KindPitch, KindInterview, KindTech:
		return Kind(s), true
	default:
		return "", false
	}
}

// Table maps a kind to its backing table.
func (k Kind) Table() string {
	switch k {
	case KindVisit:
		return "visitlogs"
	case KindPitch:
		return "business_pitch"
	case KindInterview:
		return "interview"
	case KindTech:
		return "tech_event"
	}
	return ""
}

// Label is the human-facing purpose name shown on passes and dashboards.
func (k Kind) Label() string {
	switch k {
	case KindVisit:
		return "Visit a Friend"
	case KindPitch:
		return "Business Pitch"
	case KindInterview:
		return "Interview"
	case KindTech:
		return "Attend Tech Event"
	}
	return string(k)
}

// Status is the three-valued reservation state, derived entirely from the
// nullability of the two timestamps.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusCheckedIn  Status = "Checked In"
	StatusCheckedOut Status = "Checked Out"
)

// StatusOf is the pure derivation: (null,null) is Pending, (set,null) is
// Checked In, (set,set) is Checked Out. A set check_out with a null
// check_in never occurs; callers uphold that by guarding transitions.
func StatusOf(checkIn, checkOut *time.Time) Status {
	switch {
	case checkIn == nil:
		return StatusPending
	case checkOut == nil:
		return StatusCheckedIn
	default:
		return StatusCheckedOut
	}
}

// Details is the kind-specific payload of a reservation, one variant per
// kind.
type Details interface {
	Kind() Kind
	Validate() error
}

type VisitDetails struct {
	Company     string `json:"company"`
	FriendName  string `json:"friend_name"`
	FriendEmail string `json:"friend_email"`
	Purpose     string `json:"purpose"`
}

func (VisitDetails) Kind() Kind { return KindVisit }

func (d VisitDetails) Validate() error {
	if d.Company == "" {
		return ValidationError("company")
	}
	if d.FriendName == "" {
		return ValidationError("friend_name")
	}
	if d.FriendEmail == "" {
		return ValidationError("friend_email")
	}
	if d.Purpose == "" {
		return ValidationError("purpose")
	}
	return nil
}

type PitchDetails struct {
	CompanyName      string `json:"company_name"`
	PitchTitle       string `json:"pitch_title"`
	PitchDescription string `json:"pitch_description"`
}

func (PitchDetails) Kind() Kind { return KindPitch }

func (d PitchDetails) Validate() error {
	if d.CompanyName == "" {
		return ValidationError("company_name")
	}
	if d.PitchTitle == "" {
		return ValidationError("pitch_title")
	}
	if d.PitchDescription == "" {
		return ValidationError("pitch_description")
	}
	return nil
}

type InterviewDetails struct {
	Company  string    `json:"company"`
	Position string    `json:"position"`
	DateTime time.Time `json:"date_time"`
}

func (InterviewDetails) Kind() Kind { return KindInterview }

func (d InterviewDetails) Validate() error {
	if d.Company == "" {
		return ValidationError("company")
	}
	if d.Position == "" {
		return ValidationError("position")
	}
	if d.DateTime.IsZero() {
		return ValidationError("date_time")
	}
	return nil
}

type TechEventDetails struct {
	EventName      string    `json:"event_name"`
	EventDateTime  time.Time `json:"event_date_time"`
	RoleOfInterest string    `json:"role_of_interest"`
}

func (TechEventDetails) Kind() Kind { return KindTech }

func (d TechEventDetails) Validate() error {
	if d.EventName == "" {
		return ValidationError("event_name")
	}
	if d.EventDateTime.IsZero() {
		return ValidationError("event_date_time")
	}
	if d.RoleOfInterest == "" {
		return ValidationError("role_of_interest")
	}
	return nil
}

// Reservation is one visit request in one of the four kind tables.
// Created Pending, mutated exactly twice (check-in, then check-out),
// never deleted. created_at doubles as the join key into the activity
// feed, so it is written once at creation and never touched again.
type Reservation struct {
	ID        int64      `json:"id"`
	Kind      Kind       `json:"kind"`
	UserEmail string     `json:"user_email"`
	Details   Details    `json:"details"`
	CreatedAt time.Time  `json:"created_at"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
}

func (r *Reservation) Status() Status {
	return StatusOf(r.CheckIn, r.CheckOut)
}

// Active reports whether the reservation still blocks a new one. A
// visitor holds at most one active reservation across all kinds.
func (r *Reservation) Active() bool {
	return r.CheckOut == nil
}

func (r *Reservation) String() string {
	return fmt.Sprintf("%s/%d (%s)", r.Kind, r.ID, r.Status())
}
