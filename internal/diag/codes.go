package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические (от внешнего лексера)
	LexError Code = 1001

	// Парсерные (от внешнего парсера)
	SynError Code = 2001

	// Препроцессор
	PreInfo            Code = 3000
	PreSizeSkipped     Code = 3001
	PreSizeNotGlobal   Code = 3002
	PreMalformedTree   Code = 3003
	PreRendererUnknown Code = 3004

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Конфигурация
	ProjCodeFolder Code = 5003

	// Наблюдаемость
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:        "Unknown error",
		LexError:           "Lexical error",
		SynError:           "Syntax error",
		PreInfo:            "Preprocessor information",
		PreSizeSkipped:     "Sizing call left in place",
		PreSizeNotGlobal:   "Sizing call outside the top level",
		PreMalformedTree:   "Malformed parse tree",
		PreRendererUnknown: "Unknown renderer",
		IOLoadFileError:    "I/O load file error",
		IOCacheError:       "Result cache error",
		ProjCodeFolder:     "Unreadable code folder entry",
		ObsTimings:         "Phase timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("PRE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
