package metrica

import "github.com/okian/touchline/internal/domain/model"

// Vendor labels, lower-cased.
const (
	labelPass          = "pass"
	labelCarry         = "carry"
	labelShot          = "shot"
	labelRecovery      = "recovery"
	labelFaultReceived = "fault received"
	labelBallOut       = "ball out"
	labelBallLost      = "ball lost"
)

// goalSubtype is the sub-type name that turns a shot into a goal.
const goalSubtype = "GOAL"

var canonicalByLabel = map[string]model.Category{
	labelPass:  model.CategoryPass,
	labelCarry: model.CategoryDribble,
	labelShot:  model.CategoryShot,
}

var inPossession = map[string]struct{}{
	labelPass:     {},
	labelCarry:    {},
	labelRecovery: {},
	labelShot:     {},
}

var outOfPossession = map[string]struct{}{
	labelFaultReceived: {},
	labelBallOut:       {},
	labelBallLost:      {},
}

// CanonicalCategory maps a lower-cased vendor label to its canonical
// category, or model.CategoryNone when there is none.
func CanonicalCategory(label string) model.Category {
	return canonicalByLabel[label]
}

// IsInPossession reports whether the label keeps the ball with the actor.
func IsInPossession(label string) bool {
	_, ok := inPossession[label]
	return ok
}

// IsOutOfPossession reports whether the label gives the ball away.
func IsOutOfPossession(label string) bool {
	_, ok := outOfPossession[label]
	return ok
}

// needsLookAhead reports whether the label's outcome depends on the next event.
func needsLookAhead(label string) bool {
	return label == labelPass || label == labelCarry
}
