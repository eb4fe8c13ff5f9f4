package booking

import (
	"context"
	"testing"

	"chefbook/models"
)

func TestConflictCheckFreeSlot(t *testing.T) {
	repo := newFakeBookingRepo()
	c := &DefaultConflictChecker{Repo: repo}

	res := c.Check(context.Background(), models.Slot{Date: "2025-06-01", Time: "18:00"})
	if res.Conflict {
		t.Fatalf("free slot reported as conflict: %+v", res)
	}
}

func TestConflictCheckTakenSlot(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["b1"] = &models.Booking{
		ID:            "b1",
		Status:        models.StatusConfirmed,
		RequestedDate: "2025-06-01",
		RequestedTime: "18:00",
	}
	c := &DefaultConflictChecker{Repo: repo}

	res := c.Check(context.Background(), models.Slot{Date: "2025-06-01", Time: "18:00"})
	if !res.Conflict || res.BookingID != "b1" {
		t.Fatalf("taken slot not detected: %+v", res)
	}
}

func TestConflictCheckIgnoresPendingAndOtherSlots(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.bookings["p1"] = &models.Booking{
		ID:            "p1",
		Status:        models.StatusPending,
		RequestedDate: "2025-06-01",
		RequestedTime: "18:00",
	}
	repo.bookings["c1"] = &models.Booking{
		ID:            "c1",
		Status:        models.StatusConfirmed,
		RequestedDate: "2025-06-01",
		RequestedTime: "20:00",
	}
	c := &DefaultConflictChecker{Repo: repo}

	res := c.Check(context.Background(), models.Slot{Date: "2025-06-01", Time: "18:00"})
	if res.Conflict {
		t.Fatalf("pending booking or different time caused a conflict: %+v", res)
	}
}

func TestConflictCheckFailsClosed(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.failFind = true
	c := &DefaultConflictChecker{Repo: repo}

	res := c.Check(context.Background(), models.Slot{Date: "2025-06-01", Time: "18:00"})
	if !res.Conflict {
		t.Fatal("store error must be treated as a conflict")
	}
}
