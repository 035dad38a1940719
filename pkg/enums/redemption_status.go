package enums

// RedemptionStatus is the printed state of a record or item.
type RedemptionStatus string

const (
	RedemptionStatusRedeemed    RedemptionStatus = "Đã chuộc"
	RedemptionStatusNotRedeemed RedemptionStatus = "Chưa chuộc"
)

// String implements fmt.Stringer.
func (s RedemptionStatus) String() string {
	return string(s)
}

// RedemptionStatusOf maps a redeemed flag to its printed state.
func RedemptionStatusOf(redeemed bool) RedemptionStatus {
	if redeemed {
		return RedemptionStatusRedeemed
	}
	return RedemptionStatusNotRedeemed
}

// RecordFullyRedeemed reports whether every item of a record is redeemed. A
// record without items is never fully redeemed.
func RecordFullyRedeemed(itemCount, redeemedCount int64) bool {
	return itemCount > 0 && redeemedCount >= itemCount
}
