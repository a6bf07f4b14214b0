// Package zip bundles profile export files into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

type File struct {
	Name string
	Data []byte
}

// Archive writes the files into a zip in the given order. Empty or
// duplicate names are rewritten so every entry stays reachable.
func Archive(files []File) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(files))
	for i, f := range files {
		name := safeName(f.Name, i)
		if n := seen[name]; n > 0 {
			name = dedupeName(name, n)
		}
		seen[safeName(f.Name, i)]++
		w, err := zw.Create(name)
		if err != nil {
			continue
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}

func safeName(name string, idx int) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", ".")
	}
	if name == "" {
		name = fmt.Sprintf("file-%d.txt", idx+1)
	}
	return name
}

func dedupeName(name string, n int) string {
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return fmt.Sprintf("%s-%d%s", name[:idx], n, name[idx:])
	}
	return fmt.Sprintf("%s-%d", name, n)
}
