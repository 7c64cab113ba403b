package workflow

import (
	"strings"

	"github.com/mmdatafocus/sales_backend/models"
	"github.com/shopspring/decimal"
)

// MatchTolerance is the maximum absolute difference, in the smallest display
// unit of the currency, under which file and system amounts still count as
// matched.
var MatchTolerance = decimal.NewFromInt(1000)

// CarrierNetAmount is what the carrier owes (or is owed) for one shipment:
// the order value plus its shipping fee plus collected COD, minus the return
// fee.
func CarrierNetAmount(orderAmount, shippingFee, codAmount, returnFee decimal.Decimal) decimal.Decimal {
	return orderAmount.Add(shippingFee).Add(codAmount).Sub(returnFee)
}

// PlatformNetAmount computes the expected platform payout. When the order
// carries a recorded customer_paid figure that figure wins; the computed
// formula is kept alongside so disagreement can be flagged instead of
// silently discarded.
func PlatformNetAmount(orderAmount, otherCharges, deductions, customerPaid decimal.Decimal) (net decimal.Decimal, disagrees bool) {
	computed := orderAmount.Add(otherCharges).Sub(deductions)
	if customerPaid.IsZero() {
		return computed, false
	}
	return customerPaid, customerPaid.Sub(computed).Abs().GreaterThan(MatchTolerance)
}

// FileNetAmount is the settlement file's own net figure for a row.
func FileNetAmount(cod, codFee, shippingFee, returnFee, partialFee, adjustment decimal.Decimal) decimal.Decimal {
	return cod.Sub(codFee).Sub(shippingFee).Sub(returnFee).Sub(partialFee).Add(adjustment)
}

// SettlementDiff carries the per-field differences between a file row and the
// matching system record.
type SettlementDiff struct {
	COD      decimal.Decimal
	Shipping decimal.Decimal
	Net      decimal.Decimal
}

// ClassifySettlementRow compares file and system amounts. The row is matched
// only when every difference is within MatchTolerance.
func ClassifySettlementRow(fileCOD, fileShipping, fileNet, systemCOD, systemShipping, systemNet decimal.Decimal) (models.MatchStatus, SettlementDiff) {
	diff := SettlementDiff{
		COD:      fileCOD.Sub(systemCOD),
		Shipping: fileShipping.Sub(systemShipping),
		Net:      fileNet.Sub(systemNet),
	}
	if diff.COD.Abs().LessThanOrEqual(MatchTolerance) &&
		diff.Shipping.Abs().LessThanOrEqual(MatchTolerance) &&
		diff.Net.Abs().LessThanOrEqual(MatchTolerance) {
		return models.MatchStatusMatched, diff
	}
	return models.MatchStatusMismatched, diff
}

// ParseMoney coerces a spreadsheet cell into a decimal amount. Currency
// symbols, thousand separators and whitespace are stripped; anything that
// still fails to parse becomes 0.
func ParseMoney(raw string) decimal.Decimal {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			// thousand separator, dropped
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// Settlement files arrive with carrier- and platform-specific column names in
// both Vietnamese and English. Matching is a case-insensitive substring test
// against these alias lists.
var (
	trackingHeaderAliases = []string{
		"mã vận đơn", "ma van don", "vận đơn", "van don",
		"tracking", "waybill", "mã đơn hàng", "ma don hang", "order code",
	}
	codHeaderAliases = []string{
		"tiền thu hộ", "tien thu ho", "cod",
	}
	codFeeHeaderAliases = []string{
		"phí thu hộ", "phi thu ho", "cod fee", "collection fee",
	}
	shippingFeeHeaderAliases = []string{
		"phí vận chuyển", "phi van chuyen", "cước phí", "cuoc phi",
		"shipping fee", "delivery fee",
	}
	returnFeeHeaderAliases = []string{
		"phí hoàn", "phi hoan", "phí trả hàng", "phi tra hang", "return fee",
	}
	partialFeeHeaderAliases = []string{
		"giao một phần", "giao mot phan", "partial",
	}
	adjustmentHeaderAliases = []string{
		"điều chỉnh", "dieu chinh", "adjustment",
	}
)

func headerMatches(header string, aliases []string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return false
	}
	for _, alias := range aliases {
		if strings.Contains(h, alias) {
			return true
		}
	}
	return false
}

// settlementColumns maps the resolved column index of each monetary field;
// -1 means the file does not carry it.
type settlementColumns struct {
	tracking    int
	cod         int
	codFee      int
	shippingFee int
	returnFee   int
	partialFee  int
	adjustment  int
}

func resolveSettlementColumns(headers []string) settlementColumns {
	cols := settlementColumns{
		tracking: -1, cod: -1, codFee: -1,
		shippingFee: -1, returnFee: -1, partialFee: -1, adjustment: -1,
	}
	for i, header := range headers {
		switch {
		case cols.tracking < 0 && headerMatches(header, trackingHeaderAliases):
			cols.tracking = i
		// cod fee must be tested before cod: "phí thu hộ" contains "thu hộ"
		case cols.codFee < 0 && headerMatches(header, codFeeHeaderAliases):
			cols.codFee = i
		case cols.cod < 0 && headerMatches(header, codHeaderAliases):
			cols.cod = i
		case cols.shippingFee < 0 && headerMatches(header, shippingFeeHeaderAliases):
			cols.shippingFee = i
		case cols.returnFee < 0 && headerMatches(header, returnFeeHeaderAliases):
			cols.returnFee = i
		case cols.partialFee < 0 && headerMatches(header, partialFeeHeaderAliases):
			cols.partialFee = i
		case cols.adjustment < 0 && headerMatches(header, adjustmentHeaderAliases):
			cols.adjustment = i
		}
	}
	return cols
}

func cellAt(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}

// SettlementRow is one parsed line of an uploaded settlement file.
type SettlementRow struct {
	RowNumber      int
	TrackingNumber string
	CODAmount      decimal.Decimal
	CODFee         decimal.Decimal
	ShippingFee    decimal.Decimal
	ReturnFee      decimal.Decimal
	PartialFee     decimal.Decimal
	Adjustment     decimal.Decimal
}

// NetAmount applies the file-side net formula to the row.
func (r SettlementRow) NetAmount() decimal.Decimal {
	return FileNetAmount(r.CODAmount, r.CODFee, r.ShippingFee, r.ReturnFee, r.PartialFee, r.Adjustment)
}

// ParseSettlementRows turns a raw sheet (header row first) into settlement
// rows. Rows without a tracking number are skipped; row numbers are
// 1-based positions in the sheet including the header.
func ParseSettlementRows(rows [][]string) []SettlementRow {
	if len(rows) < 2 {
		return nil
	}
	cols := resolveSettlementColumns(rows[0])
	if cols.tracking < 0 {
		return nil
	}

	var parsed []SettlementRow
	for i, row := range rows[1:] {
		tracking := strings.TrimSpace(cellAt(row, cols.tracking))
		if tracking == "" {
			continue
		}
		parsed = append(parsed, SettlementRow{
			RowNumber:      i + 2,
			TrackingNumber: tracking,
			CODAmount:      ParseMoney(cellAt(row, cols.cod)),
			CODFee:         ParseMoney(cellAt(row, cols.codFee)),
			ShippingFee:    ParseMoney(cellAt(row, cols.shippingFee)),
			ReturnFee:      ParseMoney(cellAt(row, cols.returnFee)),
			PartialFee:     ParseMoney(cellAt(row, cols.partialFee)),
			Adjustment:     ParseMoney(cellAt(row, cols.adjustment)),
		})
	}
	return parsed
}
