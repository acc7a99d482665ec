package metrica

import "github.com/okian/touchline/internal/domain/model"

// Outcome values stored on event rows.
const (
	OutcomeUnsuccessful = 0
	OutcomeSuccessful   = 1
)

// outcomeResolver holds the one pass or carry still waiting for the next
// event to decide its outcome.
type outcomeResolver struct {
	pending *model.EventRecord
}

// observe resolves the pending row against rec, then makes rec pending if
// its own outcome needs look-ahead. rec must stay addressable until the next
// call.
func (r *outcomeResolver) observe(rec *model.EventRecord) {
	if r.pending != nil {
		r.pending.Outcome = resolveOutcome(r.pending.TeamID, rec.VendorEvent, rec.TeamID)
		r.pending = nil
	}
	if needsLookAhead(rec.VendorEvent) {
		r.pending = rec
	}
}

// resolveOutcome decides a pass or carry by team teamID given the label and
// team of the event that followed it.
func resolveOutcome(teamID, nextLabel, nextTeamID string) int {
	if IsOutOfPossession(nextLabel) && nextTeamID == teamID {
		return OutcomeUnsuccessful
	}
	if IsInPossession(nextLabel) && nextTeamID != teamID {
		return OutcomeUnsuccessful
	}
	return OutcomeSuccessful
}

// shotOutcome is successful iff any sub-type is a goal.
func shotOutcome(subtypes []string) int {
	for _, name := range subtypes {
		if name == goalSubtype {
			return OutcomeSuccessful
		}
	}
	return OutcomeUnsuccessful
}
