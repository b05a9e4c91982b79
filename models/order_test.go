package models

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},

		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
		{"unknown", StatusProcessing, false},
	}

	for _, c := range cases {
		if got := ValidTransition(c.from, c.to); got != c.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestAppendStatusRecordsHistory(t *testing.T) {
	o := &Order{Status: StatusPending, StatusHistory: []StatusEntry{{Status: StatusPending}}}

	if err := o.AppendStatus(StatusProcessing, "picking"); err != nil {
		t.Fatalf("AppendStatus: %v", err)
	}
	if o.Status != StatusProcessing {
		t.Fatalf("status = %s, want processing", o.Status)
	}
	if len(o.StatusHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(o.StatusHistory))
	}
	if o.StatusHistory[1].Note != "picking" {
		t.Fatalf("note = %q, want picking", o.StatusHistory[1].Note)
	}
}

func TestAppendStatusRejectsInvalidMove(t *testing.T) {
	o := &Order{Status: StatusShipped}

	if err := o.AppendStatus(StatusCancelled, ""); err == nil {
		t.Fatal("expected error cancelling a shipped order")
	}
	if o.Status != StatusShipped {
		t.Fatalf("status mutated to %s on rejected transition", o.Status)
	}
}

func TestSummaryProjection(t *testing.T) {
	o := &Order{
		OrderID:     "o1",
		PaymentID:   "pay_1",
		Status:      StatusPending,
		TotalAmount: 450,
		Products:    []Product{{ProductID: "p1"}},
		Address:     Address{FullName: "Asha Patel"},
	}

	s := o.Summary()

	if s.OrderID != "o1" || s.PaymentID != "pay_1" || s.Amount != 450 {
		t.Fatalf("summary = %+v", s)
	}
	if s.User.FullName != "Asha Patel" {
		t.Fatalf("summary address not carried: %+v", s.User)
	}
	if len(s.Products) != 1 {
		t.Fatalf("summary products = %d, want 1", len(s.Products))
	}
}
