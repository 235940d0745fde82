package sitepush

// FilterMode selects which previously submitted URLs are left out of a
// worklist.
type FilterMode string

// FilterMode constants.
const (
	// FilterNone keeps every URL.
	FilterNone FilterMode = "none"
	// FilterSuccessful drops URLs with any successful record for the source.
	FilterSuccessful FilterMode = "successful"
	// FilterFresh drops URLs whose successful record for the source is
	// younger than QuotaWindow.
	FilterFresh FilterMode = "fresh"
)

// Validate returns an error if the mode is unknown.
func (m FilterMode) Validate() error {
	switch m {
	case FilterNone, FilterSuccessful, FilterFresh:
		return nil
	}
	return Errorf(EINVALID, "unknown filter mode %q", string(m))
}

// OrderPolicy controls the order of URLs in a worklist after filtering.
type OrderPolicy string

// OrderPolicy constants.
const (
	OrderPreserve OrderPolicy = "preserve"
	OrderSort     OrderPolicy = "sort"
	OrderShuffle  OrderPolicy = "shuffle"
)

// Validate returns an error if the policy is unknown.
func (p OrderPolicy) Validate() error {
	switch p {
	case OrderPreserve, OrderSort, OrderShuffle:
		return nil
	}
	return Errorf(EINVALID, "unknown order policy %q", string(p))
}
