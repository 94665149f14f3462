// Package lexer turns SwiftFlow source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/podhmo/swiftflow/token"
)

// Lexer scans source text one token at a time. Its only state is the cursor.
type Lexer struct {
	src    string
	offset int // byte offset of ch
	ch     byte
	line   int
	column int
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	l := &Lexer{src: src, line: 1, column: 0, offset: -1}
	l.next()
	return l
}

// Tokenize scans src to the end and returns every token including the final EOF.
func Tokenize(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

const eof = 0

func (l *Lexer) next() {
	if l.offset >= 0 && l.offset < len(l.src) && l.src[l.offset] == '\n' {
		l.line++
		l.column = 0
	}
	l.offset++
	l.column++
	if l.offset < len(l.src) {
		l.ch = l.src[l.offset]
	} else {
		l.offset = len(l.src)
		l.ch = eof
	}
}

func (l *Lexer) peek() byte {
	if l.offset+1 < len(l.src) {
		return l.src[l.offset+1]
	}
	return eof
}

func (l *Lexer) atEOF() bool { return l.offset >= len(l.src) }

func (l *Lexer) pos() token.Pos { return token.Pos{Line: l.line, Column: l.column} }

// Next returns the next token. After the end of input it keeps returning EOF.
func (l *Lexer) Next() token.Token {
	l.skipSpaceAndComments()

	pos := l.pos()
	if l.atEOF() {
		return token.Token{Kind: token.EOF, Pos: pos}
	}

	ch := l.ch
	switch {
	case isLetter(ch):
		return l.scanIdentifier(pos)
	case isDigit(ch):
		return l.scanNumber(pos)
	case ch == '"':
		return l.scanString(pos)
	}

	l.next()
	switch ch {
	case '+':
		return l.switch3(pos, token.PLUS, '=', token.PLUS_ASSIGN, '+', token.INC)
	case '-':
		if l.ch == '>' {
			l.next()
			return l.op(pos, token.ARROW)
		}
		return l.switch3(pos, token.MINUS, '=', token.MINUS_ASSIGN, '-', token.DEC)
	case '*':
		return l.switch2(pos, token.STAR, token.STAR_ASSIGN)
	case '/':
		return l.switch2(pos, token.SLASH, token.SLASH_ASSIGN)
	case '%':
		return l.switch2(pos, token.PERCENT, token.PERCENT_ASSIGN)
	case '^':
		return l.op(pos, token.CARET)
	case '~':
		return l.op(pos, token.TILDE)
	case '=':
		return l.switch2(pos, token.ASSIGN, token.EQ)
	case '!':
		return l.switch2(pos, token.NOT, token.NEQ)
	case '<':
		return l.switch2(pos, token.LT, token.LEQ)
	case '>':
		return l.switch2(pos, token.GT, token.GEQ)
	case '&':
		if l.ch == '&' {
			l.next()
			return l.op(pos, token.AND)
		}
		return l.illegal(pos, "unexpected character '&' (did you mean '&&'?)")
	case '|':
		if l.ch == '|' {
			l.next()
			return l.op(pos, token.OR)
		}
		return l.illegal(pos, "unexpected character '|' (did you mean '||'?)")
	case '?':
		return l.op(pos, token.QUESTION)
	case ':':
		return l.op(pos, token.COLON)
	case '.':
		return l.op(pos, token.PERIOD)
	case ',':
		return l.op(pos, token.COMMA)
	case ';':
		return l.op(pos, token.SEMICOLON)
	case '(':
		return l.op(pos, token.LPAREN)
	case ')':
		return l.op(pos, token.RPAREN)
	case '[':
		return l.op(pos, token.LBRACK)
	case ']':
		return l.op(pos, token.RBRACK)
	case '{':
		return l.op(pos, token.LBRACE)
	case '}':
		return l.op(pos, token.RBRACE)
	}
	if ch < 0x20 || ch >= 0x7f {
		return l.illegal(pos, fmt.Sprintf("unexpected character %#02x", ch))
	}
	return l.illegal(pos, fmt.Sprintf("unexpected character '%c'", ch))
}

func (l *Lexer) op(pos token.Pos, kind token.Kind) token.Token {
	return token.Token{Kind: kind, Text: kind.String(), Pos: pos}
}

func (l *Lexer) illegal(pos token.Pos, msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Text: msg, Pos: pos}
}

// switch2 returns tok1 if the current character is '=', otherwise tok0.
func (l *Lexer) switch2(pos token.Pos, tok0, tok1 token.Kind) token.Token {
	if l.ch == '=' {
		l.next()
		return l.op(pos, tok1)
	}
	return l.op(pos, tok0)
}

func (l *Lexer) switch3(pos token.Pos, tok0 token.Kind, ch1 byte, tok1 token.Kind, ch2 byte, tok2 token.Kind) token.Token {
	switch l.ch {
	case ch1:
		l.next()
		return l.op(pos, tok1)
	case ch2:
		l.next()
		return l.op(pos, tok2)
	}
	return l.op(pos, tok0)
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.atEOF() {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.next()
		case l.ch == '/' && l.peek() == '/', l.ch == '#':
			for !l.atEOF() && l.ch != '\n' {
				l.next()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier(pos token.Pos) token.Token {
	start := l.offset
	for isLetter(l.ch) || isDigit(l.ch) {
		l.next()
	}
	text := l.src[start:l.offset]
	return token.Token{Kind: token.Lookup(text), Text: text, Pos: pos}
}

func (l *Lexer) scanNumber(pos token.Pos) token.Token {
	start := l.offset
	for isDigit(l.ch) {
		l.next()
	}
	isFloat := false
	if l.ch == '.' && isDigit(l.peek()) {
		isFloat = true
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
	}
	text := l.src[start:l.offset]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return l.illegal(pos, fmt.Sprintf("invalid number %s", text))
		}
		return token.Token{Kind: token.FLOAT, Text: text, Pos: pos, Float: f}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return l.illegal(pos, fmt.Sprintf("integer literal %s overflows int64", text))
	}
	return token.Token{Kind: token.INT, Text: text, Pos: pos, Int: n}
}

func (l *Lexer) scanString(pos token.Pos) token.Token {
	start := l.offset
	l.next() // opening quote
	var sb strings.Builder
	for {
		if l.atEOF() {
			return l.illegal(pos, "unterminated string")
		}
		ch := l.ch
		l.next()
		if ch == '"' {
			break
		}
		if ch != '\\' {
			sb.WriteByte(ch)
			continue
		}
		if l.atEOF() {
			return l.illegal(pos, "unterminated string")
		}
		esc := l.ch
		l.next()
		switch esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'x':
			if v, ok := l.scanHex(2); ok {
				sb.WriteByte(byte(v))
			} else {
				sb.WriteByte(esc)
			}
		case 'u':
			if v, ok := l.scanHex(4); ok {
				sb.WriteRune(rune(v))
			} else {
				sb.WriteByte(esc)
			}
		default: // \" \\ \' and unknown escapes keep the character
			sb.WriteByte(esc)
		}
	}
	return token.Token{Kind: token.STRING, Text: l.src[start:l.offset], Pos: pos, Str: sb.String()}
}

// scanHex consumes exactly n hex digits and returns their value. If fewer
// than n digits follow, nothing is consumed.
func (l *Lexer) scanHex(n int) (uint64, bool) {
	if l.offset+n > len(l.src) {
		return 0, false
	}
	v, err := strconv.ParseUint(l.src[l.offset:l.offset+n], 16, 32)
	if err != nil {
		return 0, false
	}
	for range n {
		l.next()
	}
	return v, true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }
