package preproc

// sketchSize is the captured argument text of a top-level size() call.
type sketchSize struct {
	width    string
	height   string
	renderer string
}

// state is owned by exactly one run.
type state struct {
	shape       Shape
	foundMain   bool
	hasSettings bool
	imports     []string

	size      sketchSize
	sizeValid bool

	headerLines int
	failure     *Error
}

// fail records err unless an earlier failure is already held.
func (s *state) fail(err *Error) bool {
	if s.failure != nil {
		return false
	}
	s.failure = err
	return true
}
