package backup

import "testing"

func TestIsMetaFile(t *testing.T) {
	for _, name := range []string{"meta.00", "meta.01", "20220214T120000Z.meta", "bolt", "kv", "20240212T140100Z.bolt"} {
		if !isMetaFile(name) {
			t.Fatalf("%s should be a meta file", name)
		}
	}
	for _, name := range []string{"mydb.autogen.00001.00", "manifest", "manifest.json", "data.tar.gz"} {
		if isMetaFile(name) {
			t.Fatalf("%s should not be a meta file", name)
		}
	}
}

func TestIsShardFile(t *testing.T) {
	for _, name := range []string{"mydb.autogen.00001.00", "telegraf.default.00003.02", "20220214T120000Z.s1.tar.gz", "20220214T120000Z.s123.tar.gz"} {
		if !isShardFile(name) {
			t.Fatalf("%s should be a shard file", name)
		}
	}
	for _, name := range []string{"meta.00", "manifest", "bolt"} {
		if isShardFile(name) {
			t.Fatalf("%s should not be a shard file", name)
		}
	}
}

func TestIsManifestFile(t *testing.T) {
	for _, name := range []string{"manifest.json", "manifest", "20220214T120000Z.manifest"} {
		if !isManifestFile(name) {
			t.Fatalf("%s should be a manifest file", name)
		}
	}
	for _, name := range []string{"bolt", "meta.00", "data.tsm"} {
		if isManifestFile(name) {
			t.Fatalf("%s should not be a manifest file", name)
		}
	}
}
