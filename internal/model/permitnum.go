package model

import (
	"regexp"
	"strings"
)

var (
	codeTokenRe    = regexp.MustCompile(`^[A-Z]{2,4}$`)
	numericTokenRe = regexp.MustCompile(`^\d+$`)
)

// PermitCode returns the 2-4 letter uppercase work code that follows the
// numeric parts of a permit number ("21 123456 PLB 00" -> "PLB"), or "" when
// the number carries no code.
func PermitCode(permitNum string) string {
	fields := strings.Fields(permitNum)
	for i, f := range fields {
		if !numericTokenRe.MatchString(f) {
			if i > 0 && codeTokenRe.MatchString(f) {
				return f
			}
			return ""
		}
	}
	return ""
}
