package booking

import "crypto/rand"

// referenceAlphabet avoids characters easily confused when a gate
// agent has to type a reference by hand (0/O, 1/I/L).
const referenceAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ReferenceLength is the number of random characters after the
// prefix. 31^10 leaves collisions to the unique column constraint,
// which the insert path already treats as a retryable error.
const ReferenceLength = 10

const referencePrefix = "BK-"

// NewReference mints a short, human-typeable booking reference.
// References are opaque: nothing may assume they are sequential or
// predictable, and uniqueness is ultimately enforced by the
// bookings.booking_reference unique index, not by this function.
func NewReference() (string, error) {
	buf := make([]byte, ReferenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return referencePrefix + string(buf), nil
}
