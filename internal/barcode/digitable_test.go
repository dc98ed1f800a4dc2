package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitableLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact blocks", "12345678901234567890123456", "12345.67890 12345.678901 23456"},
		{"remaining digits", "1234567890123456789012345678", "12345.67890 12345.678901 23456 78"},
		{"punctuation stripped", "12345.67890 12345.678901 23456", "12345.67890 12345.678901 23456"},
		{"too short", "12-34", "1234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DigitableLine(tt.in))
		})
	}
}
