package ledger

import "unicode/utf8"

// maxTitleLen bounds group titles.
const maxTitleLen = 50

// minParticipants is the fixed lower bound; splitting with fewer than two
// payers is meaningless.
const minParticipants = 2

// validateCreate gates group creation. maxParticipants <= 0 disables the cap.
func validateCreate(title string, totalCents int64, participantCount, maxParticipants int) error {
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return ErrInvalidTitle
	}
	if totalCents <= 0 {
		return ErrInvalidAmount
	}
	if participantCount < minParticipants {
		return ErrInvalidParticipantCount
	}
	if maxParticipants > 0 && participantCount > maxParticipants {
		return ErrInvalidParticipantCount
	}
	return nil
}

// shareOf computes the per-participant share with integer division. The
// remainder, at most participantCount-1 cents, is dropped rather than
// redistributed; shareOf(total, n) * n <= total always holds.
func shareOf(totalCents int64, participantCount int) int64 {
	return totalCents / int64(participantCount)
}
