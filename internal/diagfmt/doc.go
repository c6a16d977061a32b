// Package diagfmt renders diagnostics as colored terminal text or JSON.
package diagfmt
