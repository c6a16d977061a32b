// Package syntax holds the read-only parse tree of a sketch together with
// its token stream.
//
// Trees are produced by an external parser and handed over as a dump file
// (see Load). The preprocessor never builds trees itself; tests use Builder
// to assemble small trees from literal source text.
package syntax
