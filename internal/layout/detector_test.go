package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/bankfiles/constants"
)

func repeatLines(n, length int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strings.Repeat("0", length)
	}
	return strings.Join(lines, "\n")
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    constants.Kind
	}{
		{"empty", "", constants.Kind400},
		{"blank lines only", "\n   \n\r\n", constants.Kind400},
		{"ten 240 lines", repeatLines(10, 240), constants.Kind240},
		{"ten 400 lines", repeatLines(10, 400), constants.Kind400},
		{"crlf 240", strings.ReplaceAll(repeatLines(3, 240), "\n", "\r\n"), constants.Kind240},
		{"mean at threshold", repeatLines(2, 250), constants.Kind240},
		{"mean above threshold", repeatLines(2, 251), constants.Kind400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.content))
		})
	}
}

func TestDetect_CountsCharacters(t *testing.T) {
	// 250 characters but 251 bytes: still at the CNAB 240 threshold.
	accented := strings.Repeat("0", 249) + "É"
	assert.Equal(t, constants.Kind240, Detect(accented+"\n"+accented))
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "JOSÉ", Decode([]byte("JOSÉ")))
	assert.Equal(t, "JOSÉ", Decode([]byte("\xef\xbb\xbfJOSÉ")))
	assert.Equal(t, "JOSÉ DA CONCEIÇÃO", Decode([]byte("JOS\xc9 DA CONCEI\xc7\xc3O")))
	assert.Equal(t, "", Decode(nil))
}

func TestLines_SkipsBlank(t *testing.T) {
	got := Lines("a\n\n  \nb\r\n")
	assert.Equal(t, []string{"a", "b"}, got)
}
