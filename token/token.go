package token

import (
	"fmt"
	"strconv"
)

// Kind is the set of lexical token kinds of the language.
type Kind int

// The list of tokens.
const (
	ILLEGAL Kind = iota // error token; Text carries the diagnostic
	EOF

	literal_beg
	IDENT  // foo
	INT    // 123
	FLOAT  // 1.5
	STRING // "abc"
	literal_end

	operator_beg
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	CARET   // ^
	TILDE   // ~

	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	INC            // ++
	DEC            // --

	EQ    // ==
	NEQ   // !=
	LT    // <
	LEQ   // <=
	GT    // >
	GEQ   // >=
	AND   // &&
	OR    // ||
	NOT   // !
	ARROW // ->

	QUESTION  // ?
	COLON     // :
	PERIOD    // .
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACK    // [
	RBRACK    // ]
	LBRACE    // {
	RBRACE    // }
	operator_end

	keyword_beg
	PRINT
	IF
	ELIF
	ELSE
	WHILE
	FOR
	FUNC
	RETURN
	BREAK
	CONTINUE
	IMPORT
	FROM
	IN
	VAR
	TRUE
	FALSE
	NIL
	keyword_end
)

var kinds = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	FLOAT:  "FLOAT",
	STRING: "STRING",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	CARET:   "^",
	TILDE:   "~",

	ASSIGN:         "=",
	PLUS_ASSIGN:    "+=",
	MINUS_ASSIGN:   "-=",
	STAR_ASSIGN:    "*=",
	SLASH_ASSIGN:   "/=",
	PERCENT_ASSIGN: "%=",
	INC:            "++",
	DEC:            "--",

	EQ:    "==",
	NEQ:   "!=",
	LT:    "<",
	LEQ:   "<=",
	GT:    ">",
	GEQ:   ">=",
	AND:   "&&",
	OR:    "||",
	NOT:   "!",
	ARROW: "->",

	QUESTION:  "?",
	COLON:     ":",
	PERIOD:    ".",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACK:    "[",
	RBRACK:    "]",
	LBRACE:    "{",
	RBRACE:    "}",

	PRINT:    "print",
	IF:       "if",
	ELIF:     "elif",
	ELSE:     "else",
	WHILE:    "while",
	FOR:      "for",
	FUNC:     "func",
	RETURN:   "return",
	BREAK:    "break",
	CONTINUE: "continue",
	IMPORT:   "import",
	FROM:     "from",
	IN:       "in",
	VAR:      "var",
	TRUE:     "true",
	FALSE:    "false",
	NIL:      "nil",
}

// String returns the source spelling for operators and keywords,
// and the kind name for everything else.
func (k Kind) String() string {
	if 0 <= k && int(k) < len(kinds) && kinds[k] != "" {
		return kinds[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// IsLiteral reports whether the kind is an identifier or a basic literal.
func (k Kind) IsLiteral() bool { return literal_beg < k && k < literal_end }

// IsOperator reports whether the kind is an operator or delimiter.
func (k Kind) IsOperator() bool { return operator_beg < k && k < operator_end }

// IsKeyword reports whether the kind is a keyword.
func (k Kind) IsKeyword() bool { return keyword_beg < k && k < keyword_end }

// keywords maps every reserved spelling to its kind. Several spellings share
// a kind: all declaration keywords are VAR, fn is FUNC and null is NIL.
var keywords = map[string]Kind{
	"print":    PRINT,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"func":     FUNC,
	"fn":       FUNC,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"import":   IMPORT,
	"from":     FROM,
	"in":       IN,
	"var":      VAR,
	"let":      VAR,
	"const":    VAR,
	"net":      VAR,
	"clog":     VAR,
	"dos":      VAR,
	"sel":      VAR,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
	"null":     NIL,
}

// Lookup maps an identifier to its keyword kind, or IDENT.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Pos is a 1-based source position. The zero value is "no position".
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a single lexical unit. Only the payload field matching Kind is set.
type Token struct {
	Kind Kind
	Text string // source text, or the message for ILLEGAL
	Pos  Pos

	Int   int64
	Float float64
	Str   string // unescaped STRING payload
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case IDENT:
		return fmt.Sprintf("identifier %q", t.Text)
	case INT, FLOAT:
		return fmt.Sprintf("number %s", t.Text)
	case STRING:
		return fmt.Sprintf("string %q", t.Str)
	case ILLEGAL:
		return "illegal token"
	}
	return "'" + t.Text + "'"
}

// LowestPrec is the precedence of every token that is not a binary operator.
const LowestPrec = 0

// Precedence returns the binary operator precedence of k, or LowestPrec
// if k is not a binary operator.
func (k Kind) Precedence() int {
	switch k {
	case OR:
		return 1
	case AND:
		return 2
	case EQ, NEQ, LT, LEQ, GT, GEQ, IN:
		return 3
	case PLUS, MINUS:
		return 4
	case STAR, SLASH, PERCENT, CARET:
		return 5
	}
	return LowestPrec
}

// IsAssignOp reports whether k is = or a compound assignment operator.
func (k Kind) IsAssignOp() bool {
	switch k {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN:
		return true
	}
	return false
}

// BinaryOp returns the arithmetic operator of a compound assignment,
// e.g. PLUS for PLUS_ASSIGN, and ILLEGAL for anything else.
func (k Kind) BinaryOp() Kind {
	switch k {
	case PLUS_ASSIGN:
		return PLUS
	case MINUS_ASSIGN:
		return MINUS
	case STAR_ASSIGN:
		return STAR
	case SLASH_ASSIGN:
		return SLASH
	case PERCENT_ASSIGN:
		return PERCENT
	}
	return ILLEGAL
}
