package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOrderFinalAmount(t *testing.T) {
	cases := []struct {
		name     string
		items    int64
		shipping int64
		discount int64
		want     int64
	}{
		{"items only", 500000, 0, 0, 500000},
		{"items plus shipping", 500000, 30000, 0, 530000},
		{"discount applied after shipping", 500000, 30000, 50000, 480000},
		{"discount covers everything", 100000, 20000, 120000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := orderFinalAmount(
				decimal.NewFromInt(tc.items),
				decimal.NewFromInt(tc.shipping),
				decimal.NewFromInt(tc.discount))
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("orderFinalAmount(%d, %d, %d) = %s, want %d",
					tc.items, tc.shipping, tc.discount, got, tc.want)
			}
		})
	}
}

func TestFormatOrderNumber(t *testing.T) {
	cases := []struct {
		seq  int64
		want string
	}{
		{1, "ORD-000001"},
		{42, "ORD-000042"},
		{999999, "ORD-999999"},
		{1234567, "ORD-1234567"},
	}
	for _, tc := range cases {
		if got := formatOrderNumber(tc.seq); got != tc.want {
			t.Fatalf("formatOrderNumber(%d) = %q, want %q", tc.seq, got, tc.want)
		}
	}
}
