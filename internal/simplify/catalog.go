package simplify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys double as the English text.
const (
	msgMissingDoubleQuote = `Missing a double quote (")`
	msgMissingSingleQuote = `Missing a single quote (')`
	msgMissingClosing     = "Missing a closing %s"
	msgMissingOpening     = "Missing an opening %s"
	msgBadIdentifier      = "Names cannot start with a digit: %s"
	msgMissingMethodName  = "Missing the name of the method before its parameters"
	msgMissingClassName   = "Missing the name of the class"
	msgMissingVarName     = "Missing the name of the %s variable"
	msgIncompleteAssign   = "Missing the value assigned to %s"
	msgMissingToken       = "Missing %s before %s"
	msgExtraneous         = "Unexpected %s"
	msgMismatchedExpected = "Expected %s but found %s"
	msgMismatched         = "Unexpected %s here"
	msgNoViable           = "Cannot understand the code near %s"
	msgEndOfSketch        = "the end of the sketch"
	msgFixInsert          = "Insert %s"
	msgFixRemove          = "Remove %s"
)

var spanish = map[string]string{
	msgMissingDoubleQuote: `Falta una comilla doble (")`,
	msgMissingSingleQuote: `Falta una comilla simple (')`,
	msgMissingClosing:     "Falta un %s de cierre",
	msgMissingOpening:     "Falta un %s de apertura",
	msgBadIdentifier:      "Los nombres no pueden empezar con un dígito: %s",
	msgMissingMethodName:  "Falta el nombre del método antes de sus parámetros",
	msgMissingClassName:   "Falta el nombre de la clase",
	msgMissingVarName:     "Falta el nombre de la variable de tipo %s",
	msgIncompleteAssign:   "Falta el valor asignado a %s",
	msgMissingToken:       "Falta %s antes de %s",
	msgExtraneous:         "%s inesperado",
	msgMismatchedExpected: "Se esperaba %s pero se encontró %s",
	msgMismatched:         "%s inesperado aquí",
	msgNoViable:           "No se entiende el código cerca de %s",
	msgEndOfSketch:        "el final del sketch",
	msgFixInsert:          "Insertar %s",
	msgFixRemove:          "Eliminar %s",
}

// Languages lists the tags summaries are available in.
var Languages = []language.Tag{language.English, language.Spanish}

var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, es := range spanish {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Spanish, key, es)
	}
	return b
}

func newPrinter(tag language.Tag) *message.Printer {
	matcher := language.NewMatcher(Languages)
	_, idx, _ := matcher.Match(tag)
	return message.NewPrinter(Languages[idx], message.Catalog(messages))
}
