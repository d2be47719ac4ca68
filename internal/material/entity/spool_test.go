package entity

import "testing"

func TestIsPipeComponent(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"PIPE", true},
		{"pipe", true},
		{"Pipe Nipple", true},
		// "PIP" is a take-off spelling alias, not a classification match
		{"PIP", false},
		{"ELBOW", false},
		{"FLANGE", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsPipeComponent(tc.in); got != tc.want {
			t.Errorf("IsPipeComponent(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSpoolItemRemainingAndApply(t *testing.T) {
	pipe := SpoolItem{ComponentType: "PIPE", Length: 11.7, QtyAvailable: 99}
	rem := pipe.Remaining()
	if rem.Kind != QuantityLength || rem.Value != 11.7 {
		t.Fatalf("pipe Remaining = %+v, want length 11.7", rem)
	}
	if rem.Unit() != "m" {
		t.Fatalf("pipe unit = %q, want m", rem.Unit())
	}

	pipe.Apply(-2.5)
	if got := pipe.Remaining().Value; got != 9.2 {
		t.Fatalf("pipe after Apply(-2.5) = %v, want 9.2", got)
	}
	if pipe.QtyAvailable != 99 {
		t.Fatalf("pipe Apply touched QtyAvailable: %v", pipe.QtyAvailable)
	}

	elbow := SpoolItem{ComponentType: "ELB", QtyAvailable: 4, Length: 123}
	rem = elbow.Remaining()
	if rem.Kind != QuantityCount || rem.Value != 4 {
		t.Fatalf("elbow Remaining = %+v, want count 4", rem)
	}
	if rem.Unit() != "pcs" {
		t.Fatalf("elbow unit = %q, want pcs", rem.Unit())
	}

	elbow.Apply(-1)
	if elbow.QtyAvailable != 3 {
		t.Fatalf("elbow after Apply(-1) = %v, want 3", elbow.QtyAvailable)
	}
	if elbow.Length != 123 {
		t.Fatalf("elbow Apply touched Length: %v", elbow.Length)
	}
}

func TestTakeOffItemTotalRequired(t *testing.T) {
	pipe := TakeOffItem{ItemType: "Pipe, Seamless", LengthM: 24.5, Quantity: 3}
	if !pipe.IsPipe() {
		t.Fatal("pipe item not classified as pipe")
	}
	if got := pipe.TotalRequired(); got != 24.5 {
		t.Fatalf("pipe TotalRequired = %v, want 24.5", got)
	}

	elbow := TakeOffItem{ItemType: "ELBOW 90", LengthM: 24.5, Quantity: 3}
	if elbow.IsPipe() {
		t.Fatal("elbow item classified as pipe")
	}
	if got := elbow.TotalRequired(); got != 3 {
		t.Fatalf("elbow TotalRequired = %v, want 3", got)
	}
}
