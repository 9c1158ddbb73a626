package ingest

import (
	"path/filepath"
	"strings"

	"github.com/caselens/case-engine/internal/storage"
)

// DetectForum infers which forum produced an export. The filename is
// checked first; if it is silent, the preview's headers and cells are
// scanned for forum markers. Unidentifiable exports default to AAA,
// the larger of the two sources.
func DetectForum(path string, preview *Table) storage.Forum {
	name := strings.ToLower(filepath.Base(path))
	if strings.Contains(name, "jams") {
		return storage.ForumJAMS
	}
	if strings.Contains(name, "aaa") {
		return storage.ForumAAA
	}

	if preview != nil {
		if forum, ok := scanForForum(preview); ok {
			return forum
		}
	}
	return storage.ForumAAA
}

func scanForForum(t *Table) (storage.Forum, bool) {
	check := func(s string) (storage.Forum, bool) {
		s = strings.ToLower(s)
		if strings.Contains(s, "jams") {
			return storage.ForumJAMS, true
		}
		if strings.Contains(s, "aaa") || strings.Contains(s, "american arbitration") {
			return storage.ForumAAA, true
		}
		return "", false
	}

	for _, col := range t.Columns {
		if forum, ok := check(col); ok {
			return forum, true
		}
	}
	for i := range t.Rows {
		for _, cell := range t.Rows[i] {
			if forum, ok := check(cell); ok {
				return forum, true
			}
		}
	}
	return "", false
}
