package preproc

import "fmt"

// Shape is the detected program form.
type Shape uint8

const (
	// ShapeClassed is a sketch that already declares its classes.
	ShapeClassed Shape = iota
	// ShapeBare is a sketch of bare top-level statements; it is wrapped in
	// a class and a setup() method.
	ShapeBare
	// ShapeClassBody is a sketch of member declarations; it is wrapped in
	// a class.
	ShapeClassBody
)

var shapeNames = [...]string{
	ShapeClassed:   "classed",
	ShapeBare:      "bare",
	ShapeClassBody: "class-body",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	for i, name := range shapeNames {
		if name == string(b) {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", b)
}

// wrapped reports whether the synthesizer adds a class around the program.
func (s Shape) wrapped() bool {
	return s == ShapeBare || s == ShapeClassBody
}
