package syntax

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/codeanticode/processing-openjdk/internal/source"
	"github.com/codeanticode/processing-openjdk/internal/token"
)

// DumpVersion is the interchange format version understood by this package.
const DumpVersion = 1

const maxTreeDepth = 4096

var (
	// ErrDumpVersion is returned for dumps written by an incompatible parser.
	ErrDumpVersion = errors.New("unsupported parse dump version")
	// ErrMalformed is returned when a dump is internally inconsistent.
	ErrMalformed = errors.New("malformed parse dump")
)

// Format is the encoding of a parse dump.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

// FormatFromPath picks the encoding from the file extension: .json is JSON,
// everything else (conventionally .pdt) is msgpack.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMsgpack
}

// Dump is the wire form of a parsed sketch as written by the external parser.
type Dump struct {
	Version int         `json:"version" msgpack:"version"`
	Path    string      `json:"path" msgpack:"path"`
	Name    string      `json:"name" msgpack:"name"`
	Source  string      `json:"source" msgpack:"source"`
	Tokens  []DumpToken `json:"tokens" msgpack:"tokens"`
	Root    *DumpNode   `json:"root" msgpack:"root"`
	Errors  []DumpError `json:"errors,omitempty" msgpack:"errors,omitempty"`
}

// DumpToken is one token of the stream; text is sliced from Source.
type DumpToken struct {
	Kind  string `json:"kind" msgpack:"kind"`
	Start uint32 `json:"start" msgpack:"start"`
	End   uint32 `json:"end" msgpack:"end"`
}

// DumpNode is one tree node. Token is meaningful for terminals only.
type DumpNode struct {
	Kind     string     `json:"kind" msgpack:"kind"`
	Token    int        `json:"token,omitempty" msgpack:"token,omitempty"`
	Children []DumpNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

// DumpError is an upstream lexer or parser error.
type DumpError struct {
	Start   uint32 `json:"start" msgpack:"start"`
	End     uint32 `json:"end" msgpack:"end"`
	Message string `json:"message" msgpack:"message"`
	Lexical bool   `json:"lexical,omitempty" msgpack:"lexical,omitempty"`
}

// Decode parses a dump in the given format.
func Decode(data []byte, format Format) (*Dump, error) {
	var d Dump
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&d)
	default:
		err = msgpack.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, fmt.Errorf("decode parse dump: %w", err)
	}
	if d.Version != DumpVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrDumpVersion, d.Version, DumpVersion)
	}
	return &d, nil
}

// Encode writes d in the given format.
func Encode(d *Dump, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(d, "", "  ")
	}
	return msgpack.Marshal(d)
}

// Load reads, decodes and materializes a dump file. The sketch source is
// registered in fs as a virtual file.
func Load(fs *source.FileSet, path string) (*Tree, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadBytes(fs, path, data)
}

// LoadBytes is Load for a dump already read from path.
func LoadBytes(fs *source.FileSet, path string, data []byte) (*Tree, error) {
	d, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Path == "" {
		d.Path = strings.TrimSuffix(path, filepath.Ext(path)) + ".pde"
	}
	tree, err := FromDump(fs, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// FromDump validates d and converts it into a Tree backed by fs.
func FromDump(fs *source.FileSet, d *Dump) (*Tree, error) {
	if d.Root == nil {
		return nil, fmt.Errorf("%w: missing root", ErrMalformed)
	}
	id := fs.AddVirtual(d.Path, []byte(d.Source))
	file := fs.Get(id)
	srcLen := mustU32(len(d.Source))

	tokens := make([]token.Token, 0, len(d.Tokens))
	for i, dt := range d.Tokens {
		kind, ok := token.ParseKind(dt.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: token %d has unknown kind %q", ErrMalformed, i, dt.Kind)
		}
		if dt.End < dt.Start || dt.End > srcLen {
			return nil, fmt.Errorf("%w: token %d span [%d,%d) outside source of %d bytes", ErrMalformed, i, dt.Start, dt.End, srcLen)
		}
		tokens = append(tokens, token.Token{
			Kind: kind,
			Span: source.Span{File: id, Start: dt.Start, End: dt.End},
			Text: d.Source[dt.Start:dt.End],
		})
	}
	if n := len(tokens); n == 0 || tokens[n-1].Kind != token.EOF {
		tokens = append(tokens, token.Token{Kind: token.EOF, Span: source.At(id, srcLen)})
	}
	stream := token.NewStream(tokens)
	if err := stream.Validate(srcLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	root, err := convertNode(d.Root, stream.Len(), 0)
	if err != nil {
		return nil, err
	}

	errs := make([]Error, 0, len(d.Errors))
	for _, de := range d.Errors {
		start, end := min(de.Start, srcLen), min(de.End, srcLen)
		errs = append(errs, Error{
			Span:    source.Span{File: id, Start: start, End: max(start, end)},
			Message: de.Message,
			Lexical: de.Lexical,
		})
	}

	name := d.Name
	if name == "" {
		base := filepath.Base(d.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &Tree{Name: name, File: file, Stream: stream, Root: root, Errors: errs}, nil
}

func convertNode(dn *DumpNode, tokenCount, depth int) (*Node, error) {
	if depth > maxTreeDepth {
		return nil, fmt.Errorf("%w: tree deeper than %d", ErrMalformed, maxTreeDepth)
	}
	kind, _ := ParseKind(dn.Kind)
	if kind == Terminal {
		if dn.Token < 0 || dn.Token >= tokenCount {
			return nil, fmt.Errorf("%w: terminal references token %d of %d", ErrMalformed, dn.Token, tokenCount)
		}
		if len(dn.Children) != 0 {
			return nil, fmt.Errorf("%w: terminal %d has children", ErrMalformed, dn.Token)
		}
		return Leaf(dn.Token), nil
	}
	n := &Node{Kind: kind, Token: -1, Children: make([]*Node, 0, len(dn.Children))}
	for i := range dn.Children {
		c, err := convertNode(&dn.Children[i], tokenCount, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

// ToDump converts a tree back into its wire form.
func ToDump(t *Tree) *Dump {
	src := t.Source()
	d := &Dump{
		Version: DumpVersion,
		Name:    t.Name,
		Source:  string(src),
		Tokens:  make([]DumpToken, 0, t.Stream.Len()),
	}
	if t.File != nil {
		d.Path = t.File.Path
	}
	for _, tok := range t.Stream.Tokens() {
		d.Tokens = append(d.Tokens, DumpToken{Kind: tok.Kind.String(), Start: tok.Span.Start, End: tok.Span.End})
	}
	if t.Root != nil {
		root := toDumpNode(t.Root)
		d.Root = &root
	}
	for _, e := range t.Errors {
		d.Errors = append(d.Errors, DumpError{Start: e.Span.Start, End: e.Span.End, Message: e.Message, Lexical: e.Lexical})
	}
	return d
}

func toDumpNode(n *Node) DumpNode {
	dn := DumpNode{Kind: n.Kind.String()}
	if n.IsTerminal() {
		dn.Token = n.Token
		return dn
	}
	for _, c := range n.Children {
		dn.Children = append(dn.Children, toDumpNode(c))
	}
	return dn
}
