package scanner

// Pos is a position in the scanned input.  Records are single lines so only
// the column is tracked; it counts UTF-8 encoded characters, not bytes.
type Pos struct {
	Col int
}

// Scanner reads bytes from an in-memory buffer holding one record.  It can
// record the bytes of a token between StartToken and EndToken, and step
// back by one byte after a Read.
type Scanner struct {
	buf []byte

	// Current position in buf
	// 0 <= currentIndex <= len(buf)
	currentIndex int

	currentPos, prevPos Pos

	// Position in buf of the currently recorded token.
	// -1 means not recording a token
	tokenStartIndex int

	// Tracks how many EOFs have been read.  This is required to make
	// Back() work after an EOF has been read.
	eofCount int

	canGoBack bool
}

func NewScanner(buf []byte) *Scanner {
	return &Scanner{
		buf:             buf,
		tokenStartIndex: -1,
	}
}

// Read returns the next byte, or EOF when the input is exhausted.
func (s *Scanner) Read() byte {
	if s.currentIndex >= len(s.buf) {
		s.eofCount++
		s.canGoBack = true
		return EOF
	}
	b := s.buf[s.currentIndex]
	s.prevPos = s.currentPos
	if b < 0x80 || b >= 0xC0 {
		// First byte of an utf8-encoded codepoint
		s.currentPos.Col++
	}
	s.currentIndex++
	s.canGoBack = true
	return b
}

func (s *Scanner) Peek() byte {
	if s.currentIndex >= len(s.buf) {
		return EOF
	}
	return s.buf[s.currentIndex]
}

// Back undoes the last Read.  It cannot be called twice in a row.
func (s *Scanner) Back() {
	if !s.canGoBack {
		panic("cannot go back")
	}
	s.canGoBack = false
	if s.eofCount > 0 {
		s.eofCount--
		return
	}
	if s.currentIndex <= s.tokenStartIndex {
		panic("cannot go back past token start")
	}
	s.currentIndex--
	s.currentPos = s.prevPos
}

func (s *Scanner) StartToken() Pos {
	if s.tokenStartIndex >= 0 {
		panic("already in record mode")
	}
	s.tokenStartIndex = s.currentIndex
	return s.currentPos
}

// EndToken returns the bytes read since StartToken.  The returned slice
// does not alias the scanned buffer.
func (s *Scanner) EndToken() []byte {
	if s.tokenStartIndex < 0 {
		panic("not in record mode")
	}
	tokBytes := make([]byte, s.currentIndex-s.tokenStartIndex)
	copy(tokBytes, s.buf[s.tokenStartIndex:s.currentIndex])
	s.tokenStartIndex = -1
	return tokBytes
}

// AbortToken leaves record mode without returning the token bytes.
func (s *Scanner) AbortToken() {
	s.tokenStartIndex = -1
}

func (s *Scanner) CurrentPos() Pos {
	return s.currentPos
}

// SkipSpaceAndPeek skips JSON whitespace and returns the next byte without
// consuming it.
func (s *Scanner) SkipSpaceAndPeek() byte {
	for s.currentIndex < len(s.buf) {
		switch b := s.buf[s.currentIndex]; b {
		case ' ', '\t', '\r', '\n':
			s.currentIndex++
			s.currentPos.Col++
		default:
			return b
		}
	}
	return EOF
}

// 0xFF is a byte that should not appear in a UTF-8 encoded stream of bytes.
const EOF byte = 0xFF
