package workflow

import (
	"testing"

	"github.com/mmdatafocus/sales_backend/models"
	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestClassifySettlementRow_ToleranceBoundaries(t *testing.T) {
	system := d(500000)
	cases := []struct {
		name     string
		fileNet  decimal.Decimal
		expected models.MatchStatus
	}{
		{"exact", d(500000), models.MatchStatusMatched},
		{"plus999", d(500999), models.MatchStatusMatched},
		{"minus999", d(499001), models.MatchStatusMatched},
		{"plus1000", d(501000), models.MatchStatusMatched},
		{"plus1001", d(501001), models.MatchStatusMismatched},
		{"minus1001", d(498999), models.MatchStatusMismatched},
	}
	for _, tc := range cases {
		status, diff := ClassifySettlementRow(system, decimal.Zero, tc.fileNet, system, decimal.Zero, system)
		if status != tc.expected {
			t.Fatalf("%s: expected %s, got %s (net diff %s)", tc.name, tc.expected, status, diff.Net.String())
		}
	}
}

func TestClassifySettlementRow_AnyFieldMismatch(t *testing.T) {
	// matched requires cod, shipping and net all within tolerance
	status, diff := ClassifySettlementRow(
		d(100000), d(30000), d(70000),
		d(100000), d(25000), d(70000))
	if status != models.MatchStatusMismatched {
		t.Fatalf("expected mismatched on shipping diff, got %s", status)
	}
	if !diff.Shipping.Equal(d(5000)) {
		t.Fatalf("expected shipping diff 5000, got %s", diff.Shipping.String())
	}
	if !diff.COD.IsZero() || !diff.Net.IsZero() {
		t.Fatalf("expected zero cod/net diff, got %s / %s", diff.COD.String(), diff.Net.String())
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"  1,234.50 ", "1234.5"},
		{"-15,000", "-15000"},
		{"₫ 250,000", "250000"},
		{"250.000 VND", "250"},
		{"", "0"},
		{"n/a", "0"},
		{"-", "0"},
	}
	for _, tc := range cases {
		got := ParseMoney(tc.in)
		if got.String() != tc.expected {
			t.Fatalf("ParseMoney(%q) expected %s, got %s", tc.in, tc.expected, got.String())
		}
	}
}

func TestFileNetAmount(t *testing.T) {
	// net = cod − cod_fee − shipping − return − partial + adjustment
	net := FileNetAmount(d(500000), d(5000), d(25000), d(10000), d(2000), d(1000))
	if !net.Equal(d(459000)) {
		t.Fatalf("expected 459000, got %s", net.String())
	}
}

func TestCarrierNetAmount(t *testing.T) {
	net := CarrierNetAmount(d(300000), d(25000), d(300000), d(15000))
	if !net.Equal(d(610000)) {
		t.Fatalf("expected 610000, got %s", net.String())
	}
}

func TestPlatformNetAmount_PrefersCustomerPaid(t *testing.T) {
	// computed = 300000 + 0 − 20000 = 280000; customer_paid wins
	net, disagrees := PlatformNetAmount(d(300000), decimal.Zero, d(20000), d(279500))
	if !net.Equal(d(279500)) {
		t.Fatalf("expected customer_paid 279500, got %s", net.String())
	}
	if disagrees {
		t.Fatalf("difference of 500 is within tolerance, should not be flagged")
	}

	net, disagrees = PlatformNetAmount(d(300000), decimal.Zero, d(20000), d(250000))
	if !net.Equal(d(250000)) {
		t.Fatalf("expected customer_paid 250000, got %s", net.String())
	}
	if !disagrees {
		t.Fatalf("difference of 30000 should be flagged")
	}
}

func TestPlatformNetAmount_FallsBackToFormula(t *testing.T) {
	net, disagrees := PlatformNetAmount(d(300000), d(5000), d(20000), decimal.Zero)
	if !net.Equal(d(285000)) {
		t.Fatalf("expected computed 285000, got %s", net.String())
	}
	if disagrees {
		t.Fatalf("no customer_paid, nothing to disagree with")
	}
}

func TestResolveSettlementColumns_VietnameseHeaders(t *testing.T) {
	headers := []string{"STT", "Mã vận đơn", "Tiền thu hộ", "Phí thu hộ", "Phí vận chuyển", "Phí hoàn", "Điều chỉnh"}
	cols := resolveSettlementColumns(headers)
	if cols.tracking != 1 {
		t.Fatalf("tracking column: expected 1, got %d", cols.tracking)
	}
	if cols.cod != 2 {
		t.Fatalf("cod column: expected 2, got %d", cols.cod)
	}
	if cols.codFee != 3 {
		t.Fatalf("cod fee column: expected 3, got %d", cols.codFee)
	}
	if cols.shippingFee != 4 {
		t.Fatalf("shipping fee column: expected 4, got %d", cols.shippingFee)
	}
	if cols.returnFee != 5 {
		t.Fatalf("return fee column: expected 5, got %d", cols.returnFee)
	}
	if cols.adjustment != 6 {
		t.Fatalf("adjustment column: expected 6, got %d", cols.adjustment)
	}
	if cols.partialFee != -1 {
		t.Fatalf("partial fee column: expected -1, got %d", cols.partialFee)
	}
}

func TestResolveSettlementColumns_EnglishHeaders(t *testing.T) {
	headers := []string{"No", "Tracking Number", "COD Amount", "Shipping Fee", "Return Fee", "Partial Delivery", "Adjustment"}
	cols := resolveSettlementColumns(headers)
	if cols.tracking != 1 || cols.cod != 2 || cols.shippingFee != 3 || cols.returnFee != 4 || cols.partialFee != 5 || cols.adjustment != 6 {
		t.Fatalf("unexpected columns: %+v", cols)
	}
}

func TestParseSettlementRows(t *testing.T) {
	rows := [][]string{
		{"Mã vận đơn", "Tiền thu hộ", "Phí vận chuyển"},
		{"GHN123", "500,000", "25,000"},
		{"", "999", "999"}, // no tracking number, skipped
		{"GHN124", "bad", ""},
	}
	parsed := ParseSettlementRows(rows)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(parsed))
	}
	if parsed[0].TrackingNumber != "GHN123" || parsed[0].RowNumber != 2 {
		t.Fatalf("unexpected first row: %+v", parsed[0])
	}
	if !parsed[0].CODAmount.Equal(d(500000)) || !parsed[0].ShippingFee.Equal(d(25000)) {
		t.Fatalf("unexpected first row amounts: %+v", parsed[0])
	}
	if !parsed[1].CODAmount.IsZero() {
		t.Fatalf("unparseable cod should default to 0, got %s", parsed[1].CODAmount.String())
	}
	if parsed[1].RowNumber != 4 {
		t.Fatalf("row numbers must count skipped lines, expected 4 got %d", parsed[1].RowNumber)
	}
}

func TestParseSettlementRows_NoTrackingColumn(t *testing.T) {
	rows := [][]string{
		{"Foo", "Bar"},
		{"x", "y"},
	}
	if parsed := ParseSettlementRows(rows); parsed != nil {
		t.Fatalf("expected nil for unrecognized headers, got %d rows", len(parsed))
	}
}
