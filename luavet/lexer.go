package luavet

import "strings"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenName
	TokenNumber
	TokenString
	TokenKeyword // and, or, not, nil, true, false, function, end, if, then, elseif, else, return, local
	TokenOp      // operators and punctuation
)

// Token represents a lexical token along with the 1-based line it
// started on.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// keywords is the set of reserved words the expression grammar knows.
// Loop keywords never reach the lexer: the lexical deny pass rejects
// them before parsing starts.
var keywords = map[string]bool{
	"and": true, "or": true, "not": true,
	"nil": true, "true": true, "false": true,
	"function": true, "end": true,
	"if": true, "then": true, "elseif": true, "else": true,
	"return": true, "local": true,
}

// Lexer tokenizes a Lua expression.
type Lexer struct {
	input string
	pos   int
	line  int
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, pos: 0, line: 1}
}

// NextToken returns the next token from the input.
func (lexer *Lexer) NextToken() Token {
	lexer.skipSpaceAndComments()

	if lexer.pos >= len(lexer.input) {
		return Token{Type: TokenEOF, Line: lexer.line}
	}

	ch := lexer.input[lexer.pos]
	line := lexer.line

	switch {
	case isNameStart(ch):
		return lexer.readName()
	case isDigit(ch) || (ch == '.' && lexer.pos+1 < len(lexer.input) && isDigit(lexer.input[lexer.pos+1])):
		return lexer.readNumber()
	case ch == '"' || ch == '\'':
		return lexer.readString(ch)
	}

	// Multi-character operators, longest first.
	for _, op := range []string{"...", "..", "==", "~=", "<=", ">="} {
		if strings.HasPrefix(lexer.input[lexer.pos:], op) {
			lexer.pos += len(op)
			return Token{Type: TokenOp, Value: op, Line: line}
		}
	}

	if strings.ContainsRune("+-*/%^#<>=(){}[];:,.", rune(ch)) {
		lexer.pos++
		return Token{Type: TokenOp, Value: string(ch), Line: line}
	}

	lexer.pos++
	return Token{Type: TokenError, Value: string(ch), Line: line}
}

func (lexer *Lexer) skipSpaceAndComments() {
	for lexer.pos < len(lexer.input) {
		ch := lexer.input[lexer.pos]
		switch {
		case ch == '\n':
			lexer.line++
			lexer.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			lexer.pos++
		case strings.HasPrefix(lexer.input[lexer.pos:], "--"):
			// Line comment; long-bracket comments are not part of the
			// accepted expression subset.
			for lexer.pos < len(lexer.input) && lexer.input[lexer.pos] != '\n' {
				lexer.pos++
			}
		default:
			return
		}
	}
}

func (lexer *Lexer) readName() Token {
	start := lexer.pos
	line := lexer.line
	for lexer.pos < len(lexer.input) && isNameChar(lexer.input[lexer.pos]) {
		lexer.pos++
	}
	value := lexer.input[start:lexer.pos]
	if keywords[value] {
		return Token{Type: TokenKeyword, Value: value, Line: line}
	}
	return Token{Type: TokenName, Value: value, Line: line}
}

func (lexer *Lexer) readNumber() Token {
	start := lexer.pos
	line := lexer.line

	if strings.HasPrefix(lexer.input[lexer.pos:], "0x") || strings.HasPrefix(lexer.input[lexer.pos:], "0X") {
		lexer.pos += 2
		for lexer.pos < len(lexer.input) && isHexDigit(lexer.input[lexer.pos]) {
			lexer.pos++
		}
		return Token{Type: TokenNumber, Value: lexer.input[start:lexer.pos], Line: line}
	}

	for lexer.pos < len(lexer.input) && (isDigit(lexer.input[lexer.pos]) || lexer.input[lexer.pos] == '.') {
		lexer.pos++
	}
	// Optional exponent.
	if lexer.pos < len(lexer.input) && (lexer.input[lexer.pos] == 'e' || lexer.input[lexer.pos] == 'E') {
		lexer.pos++
		if lexer.pos < len(lexer.input) && (lexer.input[lexer.pos] == '+' || lexer.input[lexer.pos] == '-') {
			lexer.pos++
		}
		for lexer.pos < len(lexer.input) && isDigit(lexer.input[lexer.pos]) {
			lexer.pos++
		}
	}
	return Token{Type: TokenNumber, Value: lexer.input[start:lexer.pos], Line: line}
}

func (lexer *Lexer) readString(quote byte) Token {
	line := lexer.line
	lexer.pos++ // skip opening quote
	start := lexer.pos
	for lexer.pos < len(lexer.input) && lexer.input[lexer.pos] != quote {
		if lexer.input[lexer.pos] == '\\' && lexer.pos+1 < len(lexer.input) {
			lexer.pos += 2
			continue
		}
		if lexer.input[lexer.pos] == '\n' {
			// Unterminated string; plain strings do not span lines.
			return Token{Type: TokenError, Value: lexer.input[start:lexer.pos], Line: line}
		}
		lexer.pos++
	}
	if lexer.pos >= len(lexer.input) {
		return Token{Type: TokenError, Value: lexer.input[start:], Line: line}
	}
	value := lexer.input[start:lexer.pos]
	lexer.pos++ // skip closing quote
	return Token{Type: TokenString, Value: value, Line: line}
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isNameChar(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
