package simplify

import (
	"regexp"
	"strings"
)

// Hint is what a strategy found: a catalog key and its arguments.
type Hint struct {
	Key  string
	Args []any
	// Insert is text that belongs before the offending token.
	Insert string
	// Drop is the offending token when it can simply be removed.
	Drop string
}

// Strategy recognizes one kind of problem.
type Strategy struct {
	Name  string
	Match func(m Message) (Hint, bool)
}

// Strategies returns the built-in strategies in priority order.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "missing-double-quote", Match: missingQuote('"', msgMissingDoubleQuote)},
		{Name: "missing-single-quote", Match: missingQuote('\'', msgMissingSingleQuote)},
		{Name: "missing-paren", Match: unbalanced('(', ')')},
		{Name: "missing-curly", Match: unbalanced('{', '}')},
		{Name: "missing-bracket", Match: unbalanced('[', ']')},
		{Name: "bad-identifier", Match: badIdentifier},
		{Name: "missing-method-name", Match: missingMethodName},
		{Name: "missing-class-name", Match: missingClassName},
		{Name: "missing-variable-name", Match: missingVariableName},
		{Name: "incomplete-assignment", Match: incompleteAssignment},
		{Name: "missing-token", Match: missingToken},
		{Name: "extraneous-input", Match: extraneousInput},
		{Name: "mismatched-input", Match: mismatchedInput},
		{Name: "no-viable-alternative", Match: noViableAlternative},
	}
}

func missingQuote(quote byte, key string) func(Message) (Hint, bool) {
	return func(m Message) (Hint, bool) {
		if !m.Source || countUnescaped(m.Area, quote)%2 == 0 {
			return Hint{}, false
		}
		return Hint{Key: key}, true
	}
}

// countUnescaped counts quote bytes not preceded by a backslash escape;
// `\\` escapes itself.
func countUnescaped(s string, quote byte) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			n++
		}
	}
	return n
}

// stripStrings removes the contents of string and char literals so that
// brackets inside them are not counted.
func stripStrings(s string) string {
	var sb strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func unbalanced(open, closing byte) func(Message) (Hint, bool) {
	return func(m Message) (Hint, bool) {
		if !m.Source {
			return Hint{}, false
		}
		area := stripStrings(m.Area)
		opens := strings.Count(area, string(open))
		closes := strings.Count(area, string(closing))
		switch {
		case opens > closes:
			return Hint{Key: msgMissingClosing, Args: []any{quoted(string(closing))}}, true
		case closes > opens:
			return Hint{Key: msgMissingOpening, Args: []any{quoted(string(open))}}, true
		}
		return Hint{}, false
	}
}

var (
	digitWord     = regexp.MustCompile(`(?:^|[^\w.$])(\d+[A-Za-z_$][\w$]*)`)
	numberLiteral = regexp.MustCompile(`^(?:0[xX][0-9A-Fa-f]+[lL]?|\d+(?:[eE][+-]?\d+)?[fFdDlL]?)$`)
)

func badIdentifier(m Message) (Hint, bool) {
	if !m.Source {
		return Hint{}, false
	}
	for _, match := range digitWord.FindAllStringSubmatch(stripStrings(m.Area), -1) {
		word := match[1]
		if numberLiteral.MatchString(word) {
			continue
		}
		return Hint{Key: msgBadIdentifier, Args: []any{quoted(word)}}, true
	}
	return Hint{}, false
}

const primitiveTypes = `int|float|boolean|char|byte|long|short|double|String|color`

var (
	methodWithoutName = regexp.MustCompile(
		`^\s*(?:void\s*\(|(?:(?:public|private|protected|static|final|abstract)\s+)+[A-Za-z_$][\w$<>\[\]]*\s*\()`)
	classWithoutName = regexp.MustCompile(`\bclass\s*(?:\{|\b(?:extends|implements)\b)`)
	varWithoutName   = regexp.MustCompile(`(?:^|[\s;{(,])(` + primitiveTypes + `)(?:\s*\[\s*\])?\s*[=;]`)
	assignNoValue    = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*=\s*(?:;|$)`)
)

func missingMethodName(m Message) (Hint, bool) {
	if !m.Source || !methodWithoutName.MatchString(m.Area) {
		return Hint{}, false
	}
	return Hint{Key: msgMissingMethodName}, true
}

func missingClassName(m Message) (Hint, bool) {
	if !m.Source || !classWithoutName.MatchString(m.Area) {
		return Hint{}, false
	}
	return Hint{Key: msgMissingClassName}, true
}

func missingVariableName(m Message) (Hint, bool) {
	if !m.Source {
		return Hint{}, false
	}
	match := varWithoutName.FindStringSubmatch(m.Area)
	if match == nil {
		return Hint{}, false
	}
	return Hint{Key: msgMissingVarName, Args: []any{match[1]}}, true
}

func incompleteAssignment(m Message) (Hint, bool) {
	if !m.Source {
		return Hint{}, false
	}
	match := assignNoValue.FindStringSubmatch(m.Area)
	if match == nil {
		return Hint{}, false
	}
	return Hint{Key: msgIncompleteAssign, Args: []any{match[1]}}, true
}

var (
	missingForm    = regexp.MustCompile(`(?s)^missing (.+?) at '(.*)'$`)
	extraneousForm = regexp.MustCompile(`(?s)^extraneous input '(.*)' expecting (.+)$`)
	mismatchedForm = regexp.MustCompile(`(?s)^mismatched input '(.*)' expecting (.+)$`)
	noViableForm   = regexp.MustCompile(`(?s)^no viable alternative at input '(.*)'$`)
	singleToken    = regexp.MustCompile(`^'[^']*'$`)
)

func missingToken(m Message) (Hint, bool) {
	match := missingForm.FindStringSubmatch(m.Raw)
	if match == nil {
		return Hint{}, false
	}
	h := Hint{Key: msgMissingToken, Args: []any{tokenText(match[1]), tokenText(match[2])}}
	if want := strings.TrimSpace(match[1]); singleToken.MatchString(want) && len(want) > 2 {
		h.Insert = strings.Trim(want, "'")
	}
	return h, true
}

func extraneousInput(m Message) (Hint, bool) {
	match := extraneousForm.FindStringSubmatch(m.Raw)
	if match == nil {
		return Hint{}, false
	}
	return Hint{Key: msgExtraneous, Args: []any{tokenText(match[1])}, Drop: dropText(match[1])}, true
}

func mismatchedInput(m Message) (Hint, bool) {
	match := mismatchedForm.FindStringSubmatch(m.Raw)
	if match == nil {
		return Hint{}, false
	}
	found := tokenText(match[1])
	if expected := strings.TrimSpace(match[2]); singleToken.MatchString(expected) {
		return Hint{Key: msgMismatchedExpected, Args: []any{tokenText(expected), found}}, true
	}
	return Hint{Key: msgMismatched, Args: []any{found}}, true
}

func noViableAlternative(m Message) (Hint, bool) {
	match := noViableForm.FindStringSubmatch(m.Raw)
	if match == nil {
		return Hint{}, false
	}
	fields := strings.Fields(match[1])
	if len(fields) == 0 {
		return Hint{Key: msgNoViable, Args: []any{endOfSketch{}}}, true
	}
	return Hint{Key: msgNoViable, Args: []any{quoted(fields[len(fields)-1])}}, true
}

// endOfSketch is rendered through the catalog by the chain.
type endOfSketch struct{}

// tokenText renders a token as written in parser messages: 'x' or <EOF>.
func tokenText(tok string) any {
	tok = strings.TrimSpace(tok)
	if tok == "<EOF>" {
		return endOfSketch{}
	}
	return quoted(strings.Trim(tok, "'"))
}

func dropText(tok string) string {
	if tok = strings.TrimSpace(tok); tok == "<EOF>" {
		return ""
	}
	return tok
}

func quoted(s string) string {
	return "'" + s + "'"
}
