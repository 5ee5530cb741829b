// Package log provides the structured logger used to trace lazy message
// section state transitions (amqp.Message's EMPTY/AUTH-MAP/AUTH-WIRE
// cache). It is deliberately kept out of the codec hot path — neither
// encode nor decode of a single scalar value ever logs.
package log

import "github.com/sirupsen/logrus"

var logger = logrus.New()

// SetLevel adjusts verbosity; callers embedding this module in a larger
// application can wire it to their own configuration.
func SetLevel(level logrus.Level) {
	logger.SetLevel(level)
}

// SectionTransition traces a lazy section's state machine moving from one
// state to another (e.g. "auth-wire" -> "auth-map" on first read after a
// decode).
func SectionTransition(section, from, to string) {
	logger.WithFields(logrus.Fields{
		"section": section,
		"from":    from,
		"to":      to,
	}).Debug("lazy section state transition")
}

// DecodeSection traces a message section being parsed off the wire, with
// the number of entries in its body.
func DecodeSection(section string, entries int) {
	logger.WithFields(logrus.Fields{
		"section": section,
		"entries": entries,
	}).Debug("decoded message section")
}
