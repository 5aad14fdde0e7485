package domain

// Fee components in integer cents. The estimate must match the client-side
// preview bit-for-bit, so everything stays in int64 cents end to end.
const (
	FeeBaseCents       int64 = 299
	FeeBoxCents        int64 = 150
	FeeLabelPrintCents int64 = 50
)

// FeeBreakdown itemises a quote for display next to the total.
type FeeBreakdown struct {
	BaseCents       int64 `json:"base_cents"`
	BoxCents        int64 `json:"box_cents"`
	LabelPrintCents int64 `json:"label_print_cents"`
}

// EstimateFee computes the pickup fee from the two service flags.
// Pure and deterministic: same inputs always produce the same cents.
func EstimateFee(needsBox, needsLabelPrint bool) (int64, FeeBreakdown) {
	b := FeeBreakdown{BaseCents: FeeBaseCents}
	if needsBox {
		b.BoxCents = FeeBoxCents
	}
	if needsLabelPrint {
		b.LabelPrintCents = FeeLabelPrintCents
	}
	return b.BaseCents + b.BoxCents + b.LabelPrintCents, b
}
