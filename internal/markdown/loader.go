package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoadDirectory parses every *.md file directly under dir, sorted by path.
func LoadDirectory(ctx context.Context, fsys fs.FS, dir string) ([]Document, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(path.Ext(entry.Name()), ".md") {
			continue
		}
		paths = append(paths, path.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, file := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("markdown loader read %s: %w", file, err)
		}
		meta, body, err := ParseFrontMatter(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		docs = append(docs, Document{Path: file, FrontMatter: meta, Body: body})
	}
	return docs, nil
}
