package domain_test

import (
	"testing"
	"time"

	"github.com/frontdesk/visitorapp/internal/domain"
)

func TestStatusOf(t *testing.T) {
	now := time.Now()
	later := now.Add(30 * time.Minute)

	tests := []struct {
		name     string
		checkIn  *time.Time
		checkOut *time.Time
		want     domain.Status
	}{
		{"both null is pending", nil, nil, domain.StatusPending},
		{"check-in only is checked in", &now, nil, domain.StatusCheckedIn},
		{"both set is checked out", &now, &later, domain.StatusCheckedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.StatusOf(tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("StatusOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range domain.KindPriority {
		got, ok := domain.ParseKind(string(kind))
		if !ok || got != kind {
			t.Errorf("ParseKind(%q) = %q, %v", kind, got, ok)
		}
	}

	// The human-facing labels are not parseable tags
	if _, ok := domain.ParseKind("Visit a Friend"); ok {
		t.Error("ParseKind accepted a display label")
	}
	if _, ok := domain.ParseKind(""); ok {
		t.Error("ParseKind accepted empty string")
	}
}

func TestKindTables(t *testing.T) {
	want := map[domain.Kind]string{
		domain.KindVisit:     "visitlogs",
		domain.KindPitch:     "business_pitch",
		domain.KindInterview: "interview",
		domain.KindTech:      "tech_event",
	}
	for kind, table := range want {
		if got := kind.Table(); got != table {
			t.Errorf("%s.Table() = %q, want %q", kind, got, table)
		}
	}
}

func TestKindPriorityOrder(t *testing.T) {
	want := [4]domain.Kind{domain.KindVisit, domain.KindPitch, domain.KindInterview, domain.KindTech}
	if domain.KindPriority != want {
		t.Errorf("KindPriority = %v, want %v", domain.KindPriority, want)
	}
}

func TestDetailsValidate(t *testing.T) {
	when := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	valid := []domain.Details{
		domain.VisitDetails{Company: "Acme", FriendName: "Jo", FriendEmail: "jo@acme.test", Purpose: "lunch"},
		domain.PitchDetails{CompanyName: "Acme", PitchTitle: "Widgets", PitchDescription: "Faster widgets"},
		domain.InterviewDetails{Company: "Acme", Position: "Engineer", DateTime: when},
		domain.TechEventDetails{EventName: "GopherCon", EventDateTime: when, RoleOfInterest: "Backend"},
	}
	for _, d := range valid {
		if err := d.Validate(); err != nil {
			t.Errorf("%s details should be valid: %v", d.Kind(), err)
		}
	}

	invalid := []domain.Details{
		domain.VisitDetails{FriendName: "Jo", FriendEmail: "jo@acme.test", Purpose: "lunch"},
		domain.PitchDetails{CompanyName: "Acme", PitchTitle: "Widgets"},
		domain.InterviewDetails{Company: "Acme", Position: "Engineer"},
		domain.TechEventDetails{EventName: "GopherCon", EventDateTime: when},
	}
	for _, d := range invalid {
		if err := d.Validate(); err == nil {
			t.Errorf("%s details with missing field should fail validation", d.Kind())
		}
	}
}

func TestReservationActive(t *testing.T) {
	now := time.Now()
	r := domain.Reservation{Kind: domain.KindVisit, CreatedAt: now}

	if !r.Active() || r.Status() != domain.StatusPending {
		t.Errorf("new reservation: active=%v status=%q", r.Active(), r.Status())
	}

	r.CheckIn = &now
	if !r.Active() || r.Status() != domain.StatusCheckedIn {
		t.Errorf("checked-in reservation: active=%v status=%q", r.Active(), r.Status())
	}

	out := now.Add(time.Hour)
	r.CheckOut = &out
	if r.Active() || r.Status() != domain.StatusCheckedOut {
		t.Errorf("checked-out reservation: active=%v status=%q", r.Active(), r.Status())
	}
}
