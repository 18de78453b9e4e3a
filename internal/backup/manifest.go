package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Manifest is the parsed, format-tolerant view of a backup manifest. Both
// the 1.x portable format (top-level "files" list with database fields) and
// the 2.x manifest.json are accepted; unrecognized keys are ignored.
type Manifest struct {
	Path      string
	Files     []FileEntry
	Databases []string
}

type FileEntry struct {
	Name     string
	Database string
}

// findManifest locates the manifest under root, preferring manifest.json,
// then plain manifest, then the first *.manifest.
func findManifest(root string) (string, bool) {
	for _, name := range []string{v2ManifestName, "manifest"} {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	matches, err := filepath.Glob(filepath.Join(root, "*.manifest"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)
	return matches[0], true
}

// parseManifest reads and decodes a manifest. Entries in "files" may be
// strings or objects carrying fileName/filename and database keys; database
// names may also appear in a top-level "databases" list.
func parseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest is not a JSON object: %w", err)
	}

	m := &Manifest{Path: path}
	seen := map[string]bool{}
	addDB := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		m.Databases = append(m.Databases, name)
	}

	if files, ok := raw["files"].([]any); ok {
		for _, entry := range files {
			switch e := entry.(type) {
			case string:
				m.Files = append(m.Files, FileEntry{Name: e})
			case map[string]any:
				fe := FileEntry{
					Name:     firstString(e, "fileName", "filename"),
					Database: firstString(e, "database", "db"),
				}
				if fe.Name != "" {
					m.Files = append(m.Files, fe)
				}
				addDB(fe.Database)
			}
		}
	}

	if dbs, ok := raw["databases"].([]any); ok {
		for _, entry := range dbs {
			switch e := entry.(type) {
			case string:
				addDB(e)
			case map[string]any:
				addDB(firstString(e, "name", "database"))
			}
		}
	}

	return m, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			return s
		}
	}
	return ""
}
