package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindManifestPreference(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "20220214T120000Z.manifest", "{}")
	writeManifest(t, dir, "manifest", "{}")
	writeManifest(t, dir, "manifest.json", "{}")

	path, ok := findManifest(dir)
	if !ok || filepath.Base(path) != "manifest.json" {
		t.Fatalf("got %q, want manifest.json", path)
	}

	os.Remove(filepath.Join(dir, "manifest.json"))
	path, _ = findManifest(dir)
	if filepath.Base(path) != "manifest" {
		t.Fatalf("got %q, want manifest", path)
	}

	os.Remove(filepath.Join(dir, "manifest"))
	path, _ = findManifest(dir)
	if filepath.Base(path) != "20220214T120000Z.manifest" {
		t.Fatalf("got %q, want portable manifest", path)
	}

	os.Remove(filepath.Join(dir, "20220214T120000Z.manifest"))
	if _, ok := findManifest(dir); ok {
		t.Fatalf("found manifest in empty dir")
	}
}

func TestParseManifestStringFiles(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "manifest", `{"files": ["meta.00", "mydb.autogen.00001.00"]}`)
	m, err := parseManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Files) != 2 || m.Files[0].Name != "meta.00" {
		t.Fatalf("unexpected files: %+v", m.Files)
	}
	if len(m.Databases) != 0 {
		t.Fatalf("string entries carry no databases: %+v", m.Databases)
	}
}

func TestParseManifestObjectFiles(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "manifest.json",
		`{"files": [
			{"fileName": "mydb/shard.tsm", "database": "mydb"},
			{"filename": "otherdb/shard.tsm", "database": "otherdb"},
			{"fileName": "mydb/wal.00", "database": "mydb"}
		]}`)
	m, err := parseManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Files) != 3 {
		t.Fatalf("unexpected files: %+v", m.Files)
	}
	if len(m.Databases) != 2 || m.Databases[0] != "mydb" || m.Databases[1] != "otherdb" {
		t.Fatalf("unexpected databases: %+v", m.Databases)
	}
}

func TestParseManifestTopLevelDatabases(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "manifest.json",
		`{"databases": ["telegraf", {"name": "appdb"}], "version": 1}`)
	m, err := parseManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Databases) != 2 || m.Databases[0] != "telegraf" || m.Databases[1] != "appdb" {
		t.Fatalf("unexpected databases: %+v", m.Databases)
	}
}

func TestParseManifestRejectsNonObject(t *testing.T) {
	for _, content := range []string{"not json {{{", `["just", "a", "list"]`} {
		path := writeManifest(t, t.TempDir(), "manifest", content)
		if _, err := parseManifest(path); err == nil {
			t.Fatalf("expected parse error for %q", content)
		}
	}
}
