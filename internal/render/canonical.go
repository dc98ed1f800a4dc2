package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// canonicalize rewrites a finished single-revision document into a stable
// form: objects are renumbered breadth-first from the trailer references,
// dictionary keys are written in sorted order and the cross-reference table
// is rebuilt. Stream data is copied untouched. Two documents that differ only
// in object numbering or dictionary key order come out byte-identical.
func canonicalize(doc []byte) ([]byte, error) {
	offsets, trailer, err := readXref(doc)
	if err != nil {
		return nil, fmt.Errorf("read cross-reference table: %w", err)
	}

	r := &pdfReader{buf: doc, offsets: offsets, objects: make(map[int]*pdfObject, len(offsets))}
	nums := make([]int, 0, len(offsets))
	first := len(doc)
	for n, off := range offsets {
		nums = append(nums, n)
		first = min(first, off)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if _, err := r.load(n); err != nil {
			return nil, err
		}
	}

	renum := make(map[int]int, len(nums))
	order := make([]int, 0, len(nums))
	var queue []int
	assign := func(n int) {
		if _, ok := r.objects[n]; !ok {
			return
		}
		if _, seen := renum[n]; seen {
			return
		}
		order = append(order, n)
		renum[n] = len(order)
		queue = append(queue, n)
	}
	drain := func() {
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			r.objects[n].value.walkRefs(assign)
		}
	}
	trailer.walkRefs(assign)
	drain()

	// Unreferenced objects follow in content order.
	var orphans []int
	masked := make(map[int][]byte)
	for _, n := range nums {
		if _, ok := renum[n]; !ok {
			orphans = append(orphans, n)
			masked[n] = r.objects[n].encode(func(int) (int, bool) { return 0, true })
		}
	}
	sort.SliceStable(orphans, func(i, j int) bool {
		return bytes.Compare(masked[orphans[i]], masked[orphans[j]]) < 0
	})
	for _, n := range orphans {
		assign(n)
		drain()
	}

	lookup := func(n int) (int, bool) {
		m, ok := renum[n]
		return m, ok
	}

	var out bytes.Buffer
	out.Grow(len(doc))
	out.Write(doc[:first])
	xref := make([]int, len(order))
	for i, n := range order {
		xref[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(r.objects[n].encode(lookup))
		out.WriteString("\nendobj\n")
	}

	start := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(order)+1)
	for _, off := range xref {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	trailer.set("/Size", pdfValue{kind: pdfToken, raw: []byte(strconv.Itoa(len(order) + 1))})
	out.WriteString("trailer\n")
	trailer.encode(&out, lookup)
	fmt.Fprintf(&out, "\nstartxref\n%d\n%%%%EOF\n", start)
	return out.Bytes(), nil
}

type pdfKind int

const (
	pdfToken pdfKind = iota
	pdfRef
	pdfArray
	pdfDict
)

// pdfValue is a parsed object. Numbers, names, strings and keywords keep
// their source bytes in raw.
type pdfValue struct {
	kind  pdfKind
	raw   []byte
	ref   int
	keys  []string
	items []pdfValue
}

func (v pdfValue) get(key string) (pdfValue, bool) {
	for i, k := range v.keys {
		if k == key {
			return v.items[i], true
		}
	}
	return pdfValue{}, false
}

func (v *pdfValue) set(key string, item pdfValue) {
	for i, k := range v.keys {
		if k == key {
			v.items[i] = item
			return
		}
	}
	v.keys = append(v.keys, key)
	v.items = append(v.items, item)
}

// sorted returns dictionary entry indexes ordered by key.
func (v pdfValue) sorted() []int {
	idx := make([]int, len(v.keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v.keys[idx[a]] < v.keys[idx[b]] })
	return idx
}

func (v pdfValue) walkRefs(fn func(int)) {
	switch v.kind {
	case pdfRef:
		fn(v.ref)
	case pdfArray:
		for _, it := range v.items {
			it.walkRefs(fn)
		}
	case pdfDict:
		for _, i := range v.sorted() {
			v.items[i].walkRefs(fn)
		}
	}
}

// encode writes v with references mapped through renum. References to
// objects absent from the document become null.
func (v pdfValue) encode(w *bytes.Buffer, renum func(int) (int, bool)) {
	switch v.kind {
	case pdfToken:
		w.Write(v.raw)
	case pdfRef:
		if n, ok := renum(v.ref); ok {
			fmt.Fprintf(w, "%d 0 R", n)
		} else {
			w.WriteString("null")
		}
	case pdfArray:
		w.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				w.WriteByte(' ')
			}
			it.encode(w, renum)
		}
		w.WriteByte(']')
	case pdfDict:
		w.WriteString("<<")
		for j, i := range v.sorted() {
			if j > 0 {
				w.WriteByte(' ')
			}
			w.WriteString(v.keys[i])
			w.WriteByte(' ')
			v.items[i].encode(w, renum)
		}
		w.WriteString(">>")
	}
}

type pdfObject struct {
	value     pdfValue
	stream    []byte
	hasStream bool
}

func (o *pdfObject) encode(renum func(int) (int, bool)) []byte {
	var w bytes.Buffer
	o.value.encode(&w, renum)
	if o.hasStream {
		w.WriteString("\nstream\n")
		w.Write(o.stream)
		w.WriteString("\nendstream")
	}
	return w.Bytes()
}

type pdfReader struct {
	buf     []byte
	offsets map[int]int
	objects map[int]*pdfObject
}

func (r *pdfReader) load(num int) (*pdfObject, error) {
	if obj, ok := r.objects[num]; ok {
		return obj, nil
	}
	off, ok := r.offsets[num]
	if !ok {
		return nil, nil
	}
	l := &pdfLexer{buf: r.buf, pos: off}
	n, err := l.int()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if n != num {
		return nil, fmt.Errorf("object %d: cross-reference points at object %d", num, n)
	}
	if _, err := l.int(); err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	if err := l.expect("obj"); err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	v, err := l.value()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	obj := &pdfObject{value: v}
	save := l.pos
	if string(l.word()) == "stream" {
		if obj.stream, err = r.streamData(l, v); err != nil {
			return nil, fmt.Errorf("object %d: %w", num, err)
		}
		obj.hasStream = true
	} else {
		l.pos = save
	}
	if err := l.expect("endobj"); err != nil {
		return nil, fmt.Errorf("object %d: %w", num, err)
	}
	r.objects[num] = obj
	return obj, nil
}

// streamData reads the stream following dict, leaving l after endstream.
// A missing or wrong /Length falls back to scanning for endstream.
func (r *pdfReader) streamData(l *pdfLexer, dict pdfValue) ([]byte, error) {
	if l.pos < len(l.buf) && l.buf[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.buf) && l.buf[l.pos] == '\n' {
		l.pos++
	}
	start := l.pos
	if n, ok := r.length(dict); ok && n >= 0 && start+n <= len(l.buf) {
		after := &pdfLexer{buf: l.buf, pos: start + n}
		if string(after.word()) == "endstream" {
			l.pos = after.pos
			return l.buf[start : start+n], nil
		}
	}
	i := bytes.Index(l.buf[start:], []byte("endstream"))
	if i < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	end := start + i
	l.pos = end + len("endstream")
	if end > start && l.buf[end-1] == '\n' {
		end--
	}
	if end > start && l.buf[end-1] == '\r' {
		end--
	}
	return l.buf[start:end], nil
}

func (r *pdfReader) length(dict pdfValue) (int, bool) {
	v, ok := dict.get("/Length")
	if !ok {
		return 0, false
	}
	if v.kind == pdfRef {
		obj, err := r.load(v.ref)
		if err != nil || obj == nil {
			return 0, false
		}
		v = obj.value
	}
	if v.kind != pdfToken {
		return 0, false
	}
	n, err := strconv.Atoi(string(v.raw))
	return n, err == nil
}

// readXref parses the classic cross-reference table named by startxref and
// the trailer dictionary after it.
func readXref(doc []byte) (map[int]int, pdfValue, error) {
	i := bytes.LastIndex(doc, []byte("startxref"))
	if i < 0 {
		return nil, pdfValue{}, errors.New("startxref not found")
	}
	l := &pdfLexer{buf: doc, pos: i + len("startxref")}
	off, err := l.int()
	if err != nil {
		return nil, pdfValue{}, err
	}
	if off < 0 || off >= len(doc) {
		return nil, pdfValue{}, fmt.Errorf("startxref %d out of range", off)
	}
	l = &pdfLexer{buf: doc, pos: off}
	if err := l.expect("xref"); err != nil {
		return nil, pdfValue{}, err
	}
	offsets := make(map[int]int)
	for {
		save := l.pos
		if string(l.word()) == "trailer" {
			break
		}
		l.pos = save
		first, err := l.int()
		if err != nil {
			return nil, pdfValue{}, err
		}
		count, err := l.int()
		if err != nil {
			return nil, pdfValue{}, err
		}
		for k := 0; k < count; k++ {
			o, err := l.int()
			if err != nil {
				return nil, pdfValue{}, err
			}
			if _, err := l.int(); err != nil {
				return nil, pdfValue{}, err
			}
			if string(l.word()) == "n" {
				if o < 0 || o >= len(doc) {
					return nil, pdfValue{}, fmt.Errorf("object %d offset %d out of range", first+k, o)
				}
				offsets[first+k] = o
			}
		}
	}
	trailer, err := l.value()
	if err != nil {
		return nil, pdfValue{}, fmt.Errorf("trailer: %w", err)
	}
	if trailer.kind != pdfDict {
		return nil, pdfValue{}, errors.New("trailer is not a dictionary")
	}
	return offsets, trailer, nil
}

type pdfLexer struct {
	buf []byte
	pos int
}

func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *pdfLexer) skipSpace() {
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		if c == '%' {
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !isPDFSpace(c) {
			return
		}
		l.pos++
	}
}

// word reads a run of regular characters.
func (l *pdfLexer) word() []byte {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.buf) && !isPDFSpace(l.buf[l.pos]) && !isPDFDelim(l.buf[l.pos]) {
		l.pos++
	}
	return l.buf[start:l.pos]
}

func (l *pdfLexer) int() (int, error) {
	w := l.word()
	n, err := strconv.Atoi(string(w))
	if err != nil {
		return 0, fmt.Errorf("offset %d: expected integer, got %q", l.pos, w)
	}
	return n, nil
}

func (l *pdfLexer) expect(keyword string) error {
	if w := l.word(); string(w) != keyword {
		return fmt.Errorf("offset %d: expected %q, got %q", l.pos, keyword, w)
	}
	return nil
}

func (l *pdfLexer) at(s string) bool {
	return bytes.HasPrefix(l.buf[l.pos:], []byte(s))
}

func (l *pdfLexer) value() (pdfValue, error) {
	l.skipSpace()
	if l.pos >= len(l.buf) {
		return pdfValue{}, io.ErrUnexpectedEOF
	}
	start := l.pos
	c := l.buf[l.pos]
	switch {
	case l.at("<<"):
		l.pos += 2
		v := pdfValue{kind: pdfDict}
		for {
			l.skipSpace()
			if l.at(">>") {
				l.pos += 2
				return v, nil
			}
			if !l.at("/") {
				return pdfValue{}, fmt.Errorf("offset %d: expected dictionary key", l.pos)
			}
			key := l.name()
			item, err := l.value()
			if err != nil {
				return pdfValue{}, err
			}
			v.keys = append(v.keys, key)
			v.items = append(v.items, item)
		}
	case c == '[':
		l.pos++
		v := pdfValue{kind: pdfArray}
		for {
			l.skipSpace()
			if l.pos >= len(l.buf) {
				return pdfValue{}, io.ErrUnexpectedEOF
			}
			if l.buf[l.pos] == ']' {
				l.pos++
				return v, nil
			}
			item, err := l.value()
			if err != nil {
				return pdfValue{}, err
			}
			v.items = append(v.items, item)
		}
	case c == '<':
		end := bytes.IndexByte(l.buf[l.pos:], '>')
		if end < 0 {
			return pdfValue{}, io.ErrUnexpectedEOF
		}
		l.pos += end + 1
	case c == '(':
		if err := l.literal(); err != nil {
			return pdfValue{}, err
		}
	case c == '/':
		l.name()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		w := l.word()
		if num, err := strconv.Atoi(string(w)); err == nil && num >= 0 {
			if ref, ok := l.refTail(num); ok {
				return ref, nil
			}
		}
	default:
		if len(l.word()) == 0 {
			return pdfValue{}, fmt.Errorf("offset %d: unexpected %q", l.pos, c)
		}
	}
	return pdfValue{kind: pdfToken, raw: l.buf[start:l.pos]}, nil
}

// refTail completes "num gen R" after num has been read, restoring the
// position when the next tokens are not a reference.
func (l *pdfLexer) refTail(num int) (pdfValue, bool) {
	save := l.pos
	if gen, err := strconv.Atoi(string(l.word())); err == nil && gen >= 0 {
		if string(l.word()) == "R" {
			return pdfValue{kind: pdfRef, ref: num}, true
		}
	}
	l.pos = save
	return pdfValue{}, false
}

func (l *pdfLexer) name() string {
	start := l.pos
	l.pos++
	for l.pos < len(l.buf) && !isPDFSpace(l.buf[l.pos]) && !isPDFDelim(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

func (l *pdfLexer) literal() error {
	depth := 0
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		l.pos++
		switch c {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return io.ErrUnexpectedEOF
}
