package driver

import (
	"archive/zip"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// CodeFolderImports lists the packages of every .class file found in the
// jars and zips of dir, as "pkg.*" imports in sorted order. Classes in the
// default package and META-INF are skipped. A missing dir yields nothing.
// Unreadable archives are skipped and returned together in the error.
func CodeFolderImports(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	pkgs := make(map[string]struct{})
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !isArchive(e.Name()) {
			continue
		}
		if err := scanArchive(filepath.Join(dir, e.Name()), pkgs); err != nil {
			errs = append(errs, err)
		}
	}

	imports := make([]string, 0, len(pkgs))
	for pkg := range pkgs {
		imports = append(imports, pkg+".*")
	}
	slices.Sort(imports)
	return imports, errors.Join(errs...)
}

func isArchive(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".jar" || ext == ".zip"
}

func scanArchive(archive string, pkgs map[string]struct{}) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("%s: %w", archive, err)
	}
	defer r.Close()
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".class") || strings.HasPrefix(f.Name, "META-INF/") {
			continue
		}
		dir := path.Dir(f.Name)
		if dir == "." || dir == "/" {
			continue
		}
		pkgs[strings.ReplaceAll(strings.Trim(dir, "/"), "/", ".")] = struct{}{}
	}
	return nil
}

// mergeImports appends extra to base, dropping duplicates and keeping the
// first occurrence.
func mergeImports(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, group := range [][]string{base, extra} {
		for _, imp := range group {
			if _, ok := seen[imp]; ok {
				continue
			}
			seen[imp] = struct{}{}
			out = append(out, imp)
		}
	}
	return out
}
