package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rawObject struct {
	num  int
	body string
}

func buildDocument(root, info int, objs ...rawObject) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.3\n")
	offsets := map[int]int{}
	size := 0
	for _, o := range objs {
		offsets[o.num] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", o.num, o.body)
		size = max(size, o.num)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", size+1)
	for n := 1; n <= size; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&b, "%010d 00000 n \n", off)
		} else {
			b.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&b, "trailer\n<<\n/Size %d\n/Root %d 0 R\n/Info %d 0 R\n>>\nstartxref\n%d\n%%%%EOF\n", size+1, root, info, xref)
	return b.Bytes()
}

func sampleDocument() []byte {
	return buildDocument(8, 7,
		rawObject{3, "<</Type /Page /Parent 1 0 R /Resources 2 0 R /Contents 6 0 R>>"},
		rawObject{6, "<</Length 10>>\nstream\n(7 0 R) Tj\nendstream"},
		rawObject{4, "<</Type /Font /BaseFont /Helvetica /Subtype /Type1>>"},
		rawObject{5, "<</Filter /FlateDecode /Type /XObject /Length 3 >>\nstream\nabc\nendstream"},
		rawObject{9, "<</Unused true>>"},
		rawObject{1, "<</Type /Pages /Kids [3 0 R ] /Count 1>>"},
		rawObject{2, "<</Font <</F1 4 0 R>> /XObject <</TPL1 5 0 R>> /ProcSet [/PDF /Text]>>"},
		rawObject{7, "<</Producer (FPDF \\(x\\)) /CreationDate (D:20000101000000)>>"},
		rawObject{8, "<</Type /Catalog /Pages 1 0 R>>"},
	)
}

// renumberedDocument is sampleDocument with other object numbers, another
// file order and shuffled dictionary keys.
func renumberedDocument() []byte {
	pad := strings.Repeat(" ", 39)
	return buildDocument(7, 5,
		rawObject{1, "<</Length 10>>\nstream\n(7 0 R) Tj\nendstream"},
		rawObject{2, "<</Subtype /Type1 /BaseFont /Helvetica /Type /Font>>"},
		rawObject{3, "<</XObject <</TPL1 " + pad + "4 0 R >> /ProcSet [/PDF /Text] /Font <</F1 2 0 R>>>>"},
		rawObject{4, "<</Type /XObject /Length 3 /Filter /FlateDecode>>\nstream\nabc\nendstream"},
		rawObject{5, "<</CreationDate (D:20000101000000) /Producer (FPDF \\(x\\))>>"},
		rawObject{6, "<</Count 1 /Kids [8 0 R] /Type /Pages>>"},
		rawObject{7, "<</Pages 6 0 R /Type /Catalog>>"},
		rawObject{8, "<</Contents 1 0 R /Resources 3 0 R /Type /Page /Parent 6 0 R>>"},
		rawObject{9, "<</Unused true>>"},
	)
}

func TestCanonicalize_IgnoresNumberingAndKeyOrder(t *testing.T) {
	a, err := canonicalize(sampleDocument())
	require.NoError(t, err)
	b, err := canonicalize(renumberedDocument())
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	again, err := canonicalize(a)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(again))
}

func TestCanonicalize_Layout(t *testing.T) {
	out, err := canonicalize(sampleDocument())
	require.NoError(t, err)
	doc := string(out)

	assert.True(t, strings.HasPrefix(doc, "%PDF-1.3\n1 0 obj\n"))
	assert.Contains(t, doc, "1 0 obj\n<</CreationDate (D:20000101000000) /Producer (FPDF \\(x\\))>>\nendobj\n")
	assert.Contains(t, doc, "2 0 obj\n<</Pages 3 0 R /Type /Catalog>>\nendobj\n")
	assert.Contains(t, doc, "3 0 obj\n<</Count 1 /Kids [4 0 R] /Type /Pages>>\nendobj\n")
	assert.Contains(t, doc, "4 0 obj\n<</Contents 5 0 R /Parent 3 0 R /Resources 6 0 R /Type /Page>>\nendobj\n")
	assert.Contains(t, doc, "5 0 obj\n<</Length 10>>\nstream\n(7 0 R) Tj\nendstream\nendobj\n")
	assert.Contains(t, doc, "6 0 obj\n<</Font <</F1 7 0 R>> /ProcSet [/PDF /Text] /XObject <</TPL1 8 0 R>>>>\nendobj\n")
	assert.Contains(t, doc, "9 0 obj\n<</Unused true>>\nendobj\n")
	assert.Contains(t, doc, "trailer\n<</Info 1 0 R /Root 2 0 R /Size 10>>\nstartxref\n")
	assert.True(t, strings.HasSuffix(doc, "%%EOF\n"))

	offsets, _, err := readXref(out)
	require.NoError(t, err)
	require.Len(t, offsets, 9)
	for n, off := range offsets {
		assert.True(t, strings.HasPrefix(doc[off:], fmt.Sprintf("%d 0 obj\n", n)), "object %d", n)
	}
}

func TestCanonicalize_IndirectLengthAndDanglingRef(t *testing.T) {
	doc := buildDocument(1, 2,
		rawObject{1, "<</Type /Catalog /Pages 3 0 R /Metadata 12 0 R>>"},
		rawObject{2, "<<>>"},
		rawObject{3, "<</Length 4 0 R>>\nstream\nendstream inside\nendstream"},
		rawObject{4, "16"},
	)
	out, err := canonicalize(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<</Metadata null /Pages 3 0 R /Type /Catalog>>")
	assert.Contains(t, string(out), "3 0 obj\n<</Length 4 0 R>>\nstream\nendstream inside\nendstream\nendobj\n")
	assert.Contains(t, string(out), "4 0 obj\n16\nendobj\n")
}

func TestCanonicalize_RejectsBrokenDocuments(t *testing.T) {
	_, err := canonicalize([]byte("%PDF-1.3\nnothing here"))
	assert.Error(t, err)

	_, err = canonicalize([]byte("%PDF-1.3\nstartxref\n9999\n%%EOF\n"))
	assert.Error(t, err)

	broken := buildDocument(1, 1, rawObject{1, "<</Type /Catalog"})
	_, err = canonicalize(broken)
	assert.Error(t, err)
}
