// Package simplify turns raw compiler and parser messages into short,
// beginner-friendly summaries.
//
// A Chain tries its strategies in a fixed order and the first hit wins:
//
//	if s, ok := simplify.Simplify(`no viable alternative at input 'String x = "'`); ok {
//		fmt.Println(s.Summary) // Missing a double quote (")
//	}
//
// Strategies look at the offending area of a message: the quoted source
// text of "no viable alternative" and "token recognition error" messages,
// or the whole message when it is not in parser form. Token-level parser
// messages ("missing X at", "extraneous input", "mismatched input") are
// only handled by their own strategies.
package simplify
