package models

import "fmt"

// Reason is why an offer was rejected. The set is closed.
type Reason string

const (
	ReasonTooFar          Reason = "too_far"
	ReasonTooExpensive    Reason = "too_expensive"
	ReasonPoorHeating     Reason = "poor_heating"
	ReasonLackOfFurniture Reason = "lack_of_furniture"
	ReasonSold            Reason = "sold"
)

// Reasons lists every rejection reason in column order.
var Reasons = []Reason{
	ReasonTooFar,
	ReasonTooExpensive,
	ReasonPoorHeating,
	ReasonLackOfFurniture,
	ReasonSold,
}

var reasonLabels = map[Reason]string{
	ReasonTooFar:          "Too Far",
	ReasonTooExpensive:    "Too Expensive",
	ReasonPoorHeating:     "Poor Heating",
	ReasonLackOfFurniture: "Lack of Furniture",
	ReasonSold:            "Sold",
}

func (r Reason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

func (r Reason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}

func ParseReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rejection reason %q", s)
	}
	return r, nil
}
