package pdf

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// DecodeContentStream recovers readable text from a decoded page content
// stream. Line structure is kept: a vertical move starts a new line, and a
// move larger than paragraphGap line heights leaves a blank line, so that
// callers can split paragraphs on "\n\n". A horizontal move on the same line
// becomes a two-space column gap, and a line starting more than cellIndent
// right of the left margin opens with one, marking an empty first column.
func DecodeContentStream(data []byte) string {
	d := &streamDecoder{lex: lexer{data: data}}
	d.run()
	return d.text()
}

const (
	paragraphGap = 1.5
	cellIndent   = 48.0
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokName
	tokOperator
	tokArrayStart
	tokArrayEnd
	tokOther
)

type token struct {
	kind tokenKind
	text string // operator or name, or decoded string bytes
	num  float64
}

type lexer struct {
	data []byte
	pos  int
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (l *lexer) next() token {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			l.pos++
			return token{kind: tokString, text: l.literalString()}
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokOther, text: "<<"}
			}
			l.pos++
			return token{kind: tokString, text: l.hexString()}
		case c == '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokOther, text: ">>"}
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}
		case c == '/':
			l.pos++
			return token{kind: tokName, text: l.word()}
		case c == '{' || c == '}' || c == ')':
			l.pos++
			return token{kind: tokOther, text: string(c)}
		default:
			w := l.word()
			if w == "" {
				l.pos++
				continue
			}
			if n, err := strconv.ParseFloat(w, 64); err == nil {
				return token{kind: tokNumber, num: n}
			}
			return token{kind: tokOperator, text: w}
		}
	}
	return token{kind: tokEOF}
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// literalString reads a (...) string after the opening paren, honouring
// nested parentheses and backslash escapes.
func (l *lexer) literalString() string {
	var sb strings.Builder
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return sb.String()
			}
			sb.WriteByte(c)
		case '\\':
			if l.pos >= len(l.data) {
				return sb.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						val = val*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
				}
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func (l *lexer) hexString() string {
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		c := l.data[l.pos]
		if unicode.Is(unicode.ASCII_Hex_Digit, rune(c)) {
			digits = append(digits, c)
		}
		l.pos++
	}
	if l.pos < len(l.data) {
		l.pos++ // closing '>'
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, _ := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		out = append(out, byte(v))
	}
	return string(out)
}

// streamDecoder tracks the text line matrix origin (x, y) across BT/ET
// blocks so that both relative (Td) and absolute (Tm, fresh BT) positioning
// are turned into line and paragraph breaks.
type streamDecoder struct {
	lex     lexer
	out     strings.Builder
	leading float64
	tlmX    float64
	tlmY    float64
	lineX   float64
	lineY   float64
	haveY   bool
	marginX float64
}

func (d *streamDecoder) run() {
	var operands []token
	var array []token
	inArray := false

	for {
		tok := d.lex.next()
		switch tok.kind {
		case tokEOF:
			return
		case tokArrayStart:
			inArray, array = true, array[:0]
		case tokArrayEnd:
			inArray = false
			operands = append(operands, token{kind: tokOther, text: "array"})
		case tokNumber, tokString, tokName, tokOther:
			if inArray {
				array = append(array, tok)
			} else {
				operands = append(operands, tok)
			}
		case tokOperator:
			if inArray {
				continue
			}
			d.apply(tok.text, operands, array)
			operands = operands[:0]
		}
	}
}

func (d *streamDecoder) apply(op string, operands []token, array []token) {
	switch op {
	case "BT":
		// BT resets the text matrices to identity
		d.tlmX, d.tlmY = 0, 0
	case "TL":
		if n, ok := lastNumber(operands, 0); ok {
			d.leading = math.Abs(n)
		}
	case "Td", "TD":
		tx, _ := lastNumber(operands, 1)
		ty, _ := lastNumber(operands, 0)
		if op == "TD" && ty != 0 {
			d.leading = math.Abs(ty)
		}
		d.moveTo(d.tlmX+tx, d.tlmY+ty)
	case "Tm":
		x, okX := lastNumber(operands, 1)
		y, okY := lastNumber(operands, 0)
		if okX && okY {
			d.moveTo(x, y)
		}
	case "T*":
		d.nextLine()
	case "Tj":
		d.show(lastString(operands))
	case "'", "\"":
		d.nextLine()
		d.show(lastString(operands))
	case "TJ":
		for _, t := range array {
			switch t.kind {
			case tokString:
				d.show(t.text)
			case tokNumber:
				// Large negative adjustments are visual word spacing.
				if t.num < -200 {
					d.space()
				}
			}
		}
	}
}

// moveTo starts a new text line at (x, y).
func (d *streamDecoder) moveTo(x, y float64) {
	d.tlmX, d.tlmY = x, y
	switch {
	case !d.haveY:
		d.marginX = x
	case y != d.lineY:
		d.verticalMove(math.Abs(d.lineY - y))
		if x > d.marginX+cellIndent {
			d.columnGap()
		}
		d.marginX = math.Min(d.marginX, x)
	case x > d.lineX:
		d.columnGap()
	}
	d.lineX, d.lineY, d.haveY = x, y, true
}

func (d *streamDecoder) nextLine() {
	if d.leading > 0 {
		d.moveTo(d.tlmX, d.tlmY-d.leading)
		return
	}
	d.newline()
}

func (d *streamDecoder) verticalMove(dy float64) {
	if d.leading > 0 && dy > d.leading*paragraphGap {
		d.paragraph()
		return
	}
	if d.leading == 0 {
		d.leading = dy
	}
	d.newline()
}

// show writes string bytes. Simple fonts use single-byte encodings
// (WinAnsi, PDFDoc), so the Latin-1 range maps straight to runes; control
// bytes and unmapped codes are dropped.
func (d *streamDecoder) show(s string) {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '\r' || b == '\n':
			d.newline()
		case b == '\t':
			d.columnGap()
		case b >= 0x20 && b < 0x7f:
			d.out.WriteByte(b)
		case b >= 0xa0:
			d.out.WriteRune(rune(b))
		}
	}
}

func (d *streamDecoder) tail() string {
	s := d.out.String()
	if len(s) > 2 {
		return s[len(s)-2:]
	}
	return s
}

func (d *streamDecoder) newline() {
	if d.out.Len() == 0 || strings.HasSuffix(d.tail(), "\n") {
		return
	}
	d.out.WriteByte('\n')
}

func (d *streamDecoder) paragraph() {
	if d.out.Len() == 0 || d.tail() == "\n\n" {
		return
	}
	if strings.HasSuffix(d.tail(), "\n") {
		d.out.WriteByte('\n')
		return
	}
	d.out.WriteString("\n\n")
}

func (d *streamDecoder) space() {
	if t := d.tail(); d.out.Len() == 0 || strings.HasSuffix(t, " ") || strings.HasSuffix(t, "\n") {
		return
	}
	d.out.WriteByte(' ')
}

// columnGap also applies at the start of a line, where it stands for an
// empty first cell.
func (d *streamDecoder) columnGap() {
	t := d.tail()
	if t == "  " {
		return
	}
	if d.out.Len() > 0 && strings.HasSuffix(t, " ") {
		d.out.WriteByte(' ')
		return
	}
	d.out.WriteString("  ")
}

// text trims trailing blanks from every line and blank lines from both ends.
// Leading gaps are kept.
func (d *streamDecoder) text() string {
	lines := strings.Split(d.out.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// lastNumber returns the operand fromEnd positions before the operator.
func lastNumber(operands []token, fromEnd int) (float64, bool) {
	i := len(operands) - 1 - fromEnd
	if i < 0 || operands[i].kind != tokNumber {
		return 0, false
	}
	return operands[i].num, true
}

func lastString(operands []token) string {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == tokString {
			return operands[i].text
		}
	}
	return ""
}
