package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input. Its span is empty.
	EOF

	// Ident represents an identifier token.
	Ident
	// Keyword represents a reserved word of the sketch dialect.
	Keyword
	// IntLit represents an integer literal.
	IntLit
	// FloatLit represents a decimal floating point literal.
	FloatLit
	// HexColorLit represents a web color literal such as #FF8800.
	HexColorLit
	StringLit
	CharLit
	// Punct covers operators and separators.
	Punct
	Comment
	Whitespace

	kindCount
)

var kindNames = [...]string{
	Invalid:     "invalid",
	EOF:         "eof",
	Ident:       "ident",
	Keyword:     "keyword",
	IntLit:      "int",
	FloatLit:    "float",
	HexColorLit: "hexcolor",
	StringLit:   "string",
	CharLit:     "char",
	Punct:       "punct",
	Comment:     "comment",
	Whitespace:  "ws",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return Invalid, false
}
