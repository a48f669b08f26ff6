package status

import "fmt"

// UserFacing maps an internal status to the plain-English message shown to
// the reporting user. Users never see terms like "CLAIM_REQUESTED".
func UserFacing(s Status, claimantEmail string) string {
	switch OrDefault(s) {
	case Reported:
		return "We're still looking for your item."
	case MatchFound:
		return "We may have found your item. Checking now..."
	case ClaimRequested:
		return "Someone thinks this belongs to them. Please review their request."
	case Verified:
		if claimantEmail != "" {
			return fmt.Sprintf("Match confirmed! Contact them at: %s", claimantEmail)
		}
		return "Ownership confirmed. You can collect your item."
	case Resolved:
		return "This case is closed. Glad we could help!"
	case Rejected:
		return "The claim was not a match. We're still looking."
	case Secured:
		return "This item is safely stored at the security office."
	default:
		return "We're working on this."
	}
}
