package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/podhmo/swiftflow/token"
)

func kinds(toks []token.Token) []token.Kind {
	var got []token.Kind
	for _, tok := range toks {
		got = append(got, tok.Kind)
	}
	return got
}

func TestTokenize_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "declaration",
			input: "var x = 5;",
			want:  []token.Kind{token.VAR, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON, token.EOF},
		},
		{
			name:  "declaration synonyms",
			input: "let const net clog dos sel",
			want:  []token.Kind{token.VAR, token.VAR, token.VAR, token.VAR, token.VAR, token.VAR, token.EOF},
		},
		{
			name:  "two char operators",
			input: "== != <= >= && || -> += -= *= /= %= ++ --",
			want: []token.Kind{
				token.EQ, token.NEQ, token.LEQ, token.GEQ, token.AND, token.OR, token.ARROW,
				token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PERCENT_ASSIGN,
				token.INC, token.DEC, token.EOF,
			},
		},
		{
			name:  "single char operators",
			input: "+ - * / % ^ ~ = ! < > ? : . , ; ( ) [ ] { }",
			want: []token.Kind{
				token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.CARET, token.TILDE,
				token.ASSIGN, token.NOT, token.LT, token.GT, token.QUESTION, token.COLON, token.PERIOD,
				token.COMMA, token.SEMICOLON, token.LPAREN, token.RPAREN, token.LBRACK, token.RBRACK,
				token.LBRACE, token.RBRACE, token.EOF,
			},
		},
		{
			name:  "comments",
			input: "1 // one\n# two\n2",
			want:  []token.Kind{token.INT, token.INT, token.EOF},
		},
		{
			name:  "keywords",
			input: "print if elif else while for func fn return break continue import from in true false nil null",
			want: []token.Kind{
				token.PRINT, token.IF, token.ELIF, token.ELSE, token.WHILE, token.FOR, token.FUNC, token.FUNC,
				token.RETURN, token.BREAK, token.CONTINUE, token.IMPORT, token.FROM, token.IN,
				token.TRUE, token.FALSE, token.NIL, token.NIL, token.EOF,
			},
		},
		{
			name:  "member access on number is not a float",
			input: "1.foo 1.5",
			want:  []token.Kind{token.INT, token.PERIOD, token.IDENT, token.FLOAT, token.EOF},
		},
		{
			name:  "empty",
			input: "",
			want:  []token.Kind{token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(Tokenize(tt.input))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenize_Payload(t *testing.T) {
	toks := Tokenize(`x 42 3.25 "a\tb\n\"q\"\\\z"`)
	want := []token.Token{
		{Kind: token.IDENT, Text: "x", Pos: token.Pos{Line: 1, Column: 1}},
		{Kind: token.INT, Text: "42", Pos: token.Pos{Line: 1, Column: 3}, Int: 42},
		{Kind: token.FLOAT, Text: "3.25", Pos: token.Pos{Line: 1, Column: 6}, Float: 3.25},
		{Kind: token.STRING, Pos: token.Pos{Line: 1, Column: 11}, Str: "a\tb\n\"q\"\\z"},
		{Kind: token.EOF, Pos: token.Pos{Line: 1, Column: 28}},
	}
	if diff := cmp.Diff(want, toks, cmpopts.IgnoreFields(token.Token{}, "Text")); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `"\x41\x7a"`, want: "Az"},
		{input: `"\xff"`, want: "\xff"},
		{input: `"\u00e9t\u00e9"`, want: "été"},
		{input: `"\u2603"`, want: "\u2603"},
		{input: `"\x4"`, want: "x4"},
		{input: `"\xzz"`, want: "xzz"},
		{input: `"\u12g4"`, want: "u12g4"},
		{input: `"a\0b"`, want: "a\x00b"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := Tokenize(tt.input)
			if toks[0].Kind != token.STRING {
				t.Fatalf("wrong kind. want=STRING, got=%s (%q)", toks[0].Kind, toks[0].Text)
			}
			if toks[0].Str != tt.want {
				t.Errorf("wrong payload. want=%q, got=%q", tt.want, toks[0].Str)
			}
			if toks[1].Kind != token.EOF {
				t.Errorf("string did not end at the closing quote, next=%s", toks[1].Kind)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks := Tokenize("var a\n  = 1;\n\nprint a")
	var got []token.Pos
	for _, tok := range toks {
		got = append(got, tok.Pos)
	}
	want := []token.Pos{
		{Line: 1, Column: 1}, {Line: 1, Column: 5},
		{Line: 2, Column: 3}, {Line: 2, Column: 5}, {Line: 2, Column: 6},
		{Line: 4, Column: 1}, {Line: 4, Column: 7},
		{Line: 4, Column: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  token.Token
	}{
		{
			name:  "unexpected character",
			input: "a @ b",
			want:  token.Token{Kind: token.ILLEGAL, Text: "unexpected character '@'", Pos: token.Pos{Line: 1, Column: 3}},
		},
		{
			name:  "unterminated string",
			input: "\n  \"abc",
			want:  token.Token{Kind: token.ILLEGAL, Text: "unterminated string", Pos: token.Pos{Line: 2, Column: 3}},
		},
		{
			name:  "lone ampersand",
			input: "a & b",
			want:  token.Token{Kind: token.ILLEGAL, Text: "unexpected character '&' (did you mean '&&'?)", Pos: token.Pos{Line: 1, Column: 3}},
		},
		{
			name:  "integer overflow",
			input: "99999999999999999999",
			want:  token.Token{Kind: token.ILLEGAL, Text: "integer literal 99999999999999999999 overflows int64", Pos: token.Pos{Line: 1, Column: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found *token.Token
			for _, tok := range Tokenize(tt.input) {
				if tok.Kind == token.ILLEGAL {
					found = &tok
					break
				}
			}
			if found == nil {
				t.Fatalf("Tokenize(%q) produced no error token", tt.input)
			}
			if diff := cmp.Diff(tt.want, *found); diff != "" {
				t.Errorf("error token mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNext_ContinuesAfterError(t *testing.T) {
	got := kinds(Tokenize("1 $ 2 $ 3"))
	want := []token.Kind{token.INT, token.ILLEGAL, token.INT, token.ILLEGAL, token.INT, token.EOF}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNext_RepeatsEOF(t *testing.T) {
	l := New("x")
	l.Next()
	for i := 0; i < 3; i++ {
		if tok := l.Next(); tok.Kind != token.EOF {
			t.Fatalf("call %d: got %v, want EOF", i, tok.Kind)
		}
	}
}
