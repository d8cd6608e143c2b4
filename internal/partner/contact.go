package partner

import (
	"strings"
	"unicode"

	"github.com/tartampluch/go-partners/internal/config"
)

// FormatPhone keeps the digits of s, caps them at ten and groups them as
// XXX-XXX-XXXX while typing ("555", "555-12", "555-123-4567").
func FormatPhone(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > config.PhoneMaxDigits {
		d = d[:config.PhoneMaxDigits]
	}

	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + config.PhoneSeparator + d[3:]
	default:
		return d[:3] + config.PhoneSeparator + d[3:6] + config.PhoneSeparator + d[6:]
	}
}

// MatchRemote confirms an NFC pairing: the identifier received from the other
// device must equal the partner's display name exactly, case included. Two
// partners sharing a display name are indistinguishable here.
func MatchRemote(p Partner, remoteID string) error {
	name := p.DisplayName()
	if name == "" || remoteID != name {
		return ErrPairingMismatch
	}
	return nil
}
