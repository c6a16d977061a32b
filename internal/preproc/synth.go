package preproc

import (
	"fmt"
	"strings"

	"github.com/codeanticode/processing-openjdk/internal/prefs"
	"github.com/codeanticode/processing-openjdk/internal/trace"
)

// Applet argument flags understood by PApplet.main.
const (
	argFullScreen = "--full-screen"
	argBgColor    = "--bgcolor"
	argStopColor  = "--stop-color"
	argHideStop   = "--hide-stop"
)

// synthesize emits the header at offset 0 and the footer after the last
// token. It runs once, when the root is left.
func (w *walker) synthesize() {
	span := trace.Begin(w.unitSpan.Tracer(), trace.ScopePass, "synthesize", w.unitSpan)
	defer span.End("")
	w.rw.InsertAt(0, w.header())
	w.rw.InsertAtEnd(w.footer())
}

// lineWriter counts every line it writes.
type lineWriter struct {
	sb    strings.Builder
	lines int
}

func (lw *lineWriter) println(s string) {
	lw.sb.WriteString(s)
	lw.sb.WriteByte('\n')
	lw.lines++
}

func (w *walker) header() string {
	var lw lineWriter
	if !w.opts.OmitBanner {
		lw.println(fmt.Sprintf("/* autogenerated by Processing preprocessor v%s on %s */",
			Version, w.opts.now().Format("2006-01-02")))
	}
	lists := [][]string{
		w.opts.CoreImports,
		w.opts.CodeFolderImports,
		w.st.imports,
		w.opts.DefaultImports,
	}
	for _, list := range lists {
		for _, imp := range list {
			lw.println("import " + imp + ";")
		}
		if len(list) > 0 {
			lw.println("")
		}
	}
	if w.st.shape.wrapped() {
		lw.println("public class " + w.unit + " extends PApplet {")
		lw.println("")
	}
	if w.st.shape == ShapeBare {
		lw.println(w.ind.one + "public void setup() {")
	}
	w.st.headerLines = lw.lines
	return lw.sb.String()
}

func (w *walker) footer() string {
	var lw lineWriter
	lw.println("")
	if w.st.shape == ShapeBare {
		lw.println(w.ind.two + "noLoop();")
		lw.println(w.ind.one + "}")
	}
	if !w.st.shape.wrapped() {
		return lw.sb.String()
	}
	if settings, ok := w.settings(); ok {
		lw.println("")
		lw.println(w.ind.one + settings)
	}
	if !w.st.foundMain {
		lw.sb.WriteString(w.mainMethod())
	}
	lw.println("}")
	return lw.sb.String()
}

// settings renders the auto settings() method from a valid top-level
// size() call.
func (w *walker) settings() (string, bool) {
	sz := w.st.size
	if !w.st.sizeValid || sz.width == "" || sz.height == "" || w.st.hasSettings {
		return "", false
	}
	args := sz.width + "," + sz.height
	if sz.renderer != "" {
		args += "," + sz.renderer
	}
	return fmt.Sprintf("public void settings() { size(%s); }", args), true
}

func (w *walker) mainMethod() string {
	ind := w.ind
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(ind.one + "static public void main(String[] passedArgs) {\n")
	sb.WriteString(ind.two + "String[] appletArgs = new String[] { ")
	for _, arg := range appletArgs(w.opts.prefs()) {
		sb.WriteString(`"` + arg + `", `)
	}
	sb.WriteString(`"` + w.unit + `"`)
	sb.WriteString(" };\n")
	sb.WriteString(ind.two + "if (passedArgs != null) {\n")
	sb.WriteString(ind.three + "PApplet.main(concat(appletArgs, passedArgs));\n")
	sb.WriteString(ind.two + "} else {\n")
	sb.WriteString(ind.three + "PApplet.main(appletArgs);\n")
	sb.WriteString(ind.two + "}\n")
	sb.WriteString(ind.one + "}\n")
	return sb.String()
}

// appletArgs lists the presentation flags, without the unit name.
func appletArgs(p prefs.Lookup) []string {
	if !p.Bool(prefs.KeyFullScreen) {
		return nil
	}
	args := []string{
		argFullScreen,
		argBgColor + "=" + p.String(prefs.KeyBgColor),
	}
	if p.Bool(prefs.KeyStop) {
		args = append(args, argStopColor+"="+p.String(prefs.KeyStopColor))
	} else {
		args = append(args, argHideStop)
	}
	return args
}
