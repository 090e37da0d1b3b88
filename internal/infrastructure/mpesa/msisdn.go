package mpesa

import (
	"fmt"
	"regexp"
	"strings"
)

var msisdnPattern = regexp.MustCompile(`^254[17]\d{8}$`)

// NormalizeMSISDN folds a Kenyan phone number into Daraja's canonical
// 2547XXXXXXXX / 2541XXXXXXXX form. Accepted inputs are "+254...", "254...",
// "07..." / "01..." and bare "7..." / "1..." subscriber numbers.
func NormalizeMSISDN(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+")
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")

	switch {
	case strings.HasPrefix(p, "254"):
		// already canonical
	case strings.HasPrefix(p, "0") && len(p) == 10:
		p = "254" + p[1:]
	case (strings.HasPrefix(p, "7") || strings.HasPrefix(p, "1")) && len(p) == 9:
		p = "254" + p
	}

	if !msisdnPattern.MatchString(p) {
		return "", fmt.Errorf("mpesa: invalid msisdn %q", phone)
	}
	return p, nil
}
