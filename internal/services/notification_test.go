package services

import (
	"strings"
	"testing"
	"time"

	"conferencepass/internal/domain"
)

func summaryItem(title, location, tokenID string, start, end time.Time) *domain.EnrollmentWithActivity {
	return &domain.EnrollmentWithActivity{
		Enrollment: &domain.Enrollment{ID: "e-" + title, Status: domain.AttendanceNotCheckedIn},
		Activity: &domain.Activity{
			Title:     title,
			Type:      domain.ActivityWorkshop,
			Location:  location,
			StartTime: start,
			EndTime:   end,
		},
		Token: &domain.QrToken{TokenID: tokenID},
	}
}

func TestCompose_SingleEnrollment(t *testing.T) {
	generatedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	item := summaryItem("Intro to Systems", "Lab 2", "abc123", start, start.Add(time.Hour))

	out := Compose("Ada", []*domain.EnrollmentWithActivity{item}, generatedAt)

	if !strings.Contains(out, "registered for 1 activity:") {
		t.Errorf("expected singular phrasing, got:\n%s", out)
	}
	if strings.Contains(out, "next activity") {
		t.Errorf("single enrollment must not mention a next activity:\n%s", out)
	}
	for _, want := range []string{"Intro to Systems", "Lab 2", "abc123", "Ada"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestCompose_MultipleEnrollmentsPicksEarliestNext(t *testing.T) {
	generatedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	early := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

	a := summaryItem("Go Workshop", "Room A", "tok-a", late, late.Add(time.Hour))
	b := summaryItem("Opening Talk", "Auditorium", "tok-b", early, early.Add(time.Hour))

	// Order of the input must not matter for the next-activity pick.
	for _, items := range [][]*domain.EnrollmentWithActivity{{a, b}, {b, a}} {
		out := Compose("Ada", items, generatedAt)
		if !strings.Contains(out, "registered for 2 activities:") {
			t.Errorf("expected plural phrasing, got:\n%s", out)
		}
		if !strings.Contains(out, "Your next activity is Opening Talk") {
			t.Errorf("expected earliest activity as next, got:\n%s", out)
		}
	}
}

func TestCompose_Deterministic(t *testing.T) {
	generatedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	items := []*domain.EnrollmentWithActivity{
		summaryItem("Talk", "Hall", "tok-1", start, start.Add(time.Hour)),
	}

	if Compose("Ada", items, generatedAt) != Compose("Ada", items, generatedAt) {
		t.Error("expected identical output for identical inputs")
	}
}
