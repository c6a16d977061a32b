package syntax

import "fmt"

// Kind tags a tree node. The set is closed: every construct the
// preprocessor reacts to has its own kind, everything else is Other.
type Kind uint8

const (
	Invalid Kind = iota
	// Terminal is a leaf carrying one token.
	Terminal
	// Other is any non-terminal the preprocessor does not inspect.
	Other

	// Sketch is the root of a compilation unit.
	Sketch
	// StaticSketch marks a program made of bare top-level statements.
	StaticSketch
	// ActiveSketch marks a program made of member declarations.
	ActiveSketch
	// JavaSketch marks a program that already declares its classes.
	JavaSketch

	// ImportDecl is a whole `import ...;` declaration.
	ImportDecl
	// ImportName is the qualified target of an import, including `static`.
	ImportName

	ClassDecl
	ClassBody
	ClassBodyDecl
	Modifier
	MemberDecl
	MethodDecl
	// SpecialMethodDecl is a sketch entry point such as setup or draw
	// declared with a recognized signature.
	SpecialMethodDecl
	Block
	Statement
	ExprStatement
	Expr

	// SizeCall is a call of the sizing primitive: size(w, h[, renderer]).
	SizeCall
	// PrimitiveConversion is a cast-like call: int(x), float(y).
	PrimitiveConversion
	// ColorType is the color pseudo-type used as a type name.
	ColorType
	HexColorLit
	FloatLit

	kindCount
)

var kindNames = [...]string{
	Invalid:             "invalid",
	Terminal:            "terminal",
	Other:               "other",
	Sketch:              "sketch",
	StaticSketch:        "static_sketch",
	ActiveSketch:        "active_sketch",
	JavaSketch:          "java_sketch",
	ImportDecl:          "import_decl",
	ImportName:          "import_name",
	ClassDecl:           "class_decl",
	ClassBody:           "class_body",
	ClassBodyDecl:       "class_body_decl",
	Modifier:            "modifier",
	MemberDecl:          "member_decl",
	MethodDecl:          "method_decl",
	SpecialMethodDecl:   "special_method_decl",
	Block:               "block",
	Statement:           "statement",
	ExprStatement:       "expr_statement",
	Expr:                "expr",
	SizeCall:            "size_call",
	PrimitiveConversion: "primitive_conversion",
	ColorType:           "color_type",
	HexColorLit:         "hex_color_lit",
	FloatLit:            "float_lit",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind maps a dump name to a Kind. Unknown names yield Other, so newer
// parsers may add node kinds without breaking older preprocessors.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && Kind(k) != Invalid {
			return Kind(k), true
		}
	}
	return Other, false
}
