package status

import "fmt"

// Status is the lifecycle state of a reported item.
type Status string

const (
	Reported       Status = "REPORTED"
	MatchFound     Status = "MATCH_FOUND"
	ClaimRequested Status = "CLAIM_REQUESTED"
	Verified       Status = "VERIFIED"
	Rejected       Status = "REJECTED"
	Secured        Status = "SECURED"
	Resolved       Status = "RESOLVED" // terminal: item returned to owner
)

// allowedTransitions is the single source of truth for status changes.
// Every status write must be validated against this table.
var allowedTransitions = map[Status][]Status{
	Reported:       {MatchFound, ClaimRequested, Resolved, Secured},
	MatchFound:     {ClaimRequested, Reported, Resolved, Secured},
	ClaimRequested: {Verified, Rejected, Resolved, Secured},
	Verified:       {Resolved, Rejected, Secured},
	Rejected:       {Reported, Resolved, Secured},
	Secured:        {Resolved, ClaimRequested}, // can be resolved or claimed from secured state
	Resolved:       {},
}

// OrDefault returns Reported when s is empty. Items written before the
// state machine was introduced have no status field at all.
func OrDefault(s Status) Status {
	if s == "" {
		return Reported
	}
	return s
}

// CanTransition reports whether an item may move from current to next.
// An empty current status is treated as Reported; unknown statuses have
// no outbound edges.
func CanTransition(current, next Status) bool {
	for _, allowed := range allowedTransitions[OrDefault(current)] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedFrom returns the statuses reachable from s.
func AllowedFrom(s Status) []Status {
	return allowedTransitions[OrDefault(s)]
}

// Parse validates a raw status string from a request body.
func Parse(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := allowedTransitions[s]; !ok {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// All lists every status in the registry.
func All() []Status {
	return []Status{Reported, MatchFound, ClaimRequested, Verified, Rejected, Secured, Resolved}
}

// IsTerminal reports whether s has no outbound transitions.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[OrDefault(s)]) == 0
}
