package constants

import (
	"fmt"
	"strings"
)

// Kind is the line-length class of a bank interchange file.
type Kind string

const (
	Kind240 Kind = "240"
	Kind400 Kind = "400"
)

// LineLength returns the nominal record length for the kind.
func (k Kind) LineLength() int {
	if k == Kind240 {
		return 240
	}
	return 400
}

func (k Kind) Valid() bool {
	return k == Kind240 || k == Kind400
}

// ParseKind accepts "240", "cnab240", "400" and "cnab400" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "240", "cnab240", "cnab_240":
		return Kind240, nil
	case "400", "cnab400", "cnab_400":
		return Kind400, nil
	}
	return "", fmt.Errorf("unknown file kind %q", s)
}
