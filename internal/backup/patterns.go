package backup

import (
	"path"
	"regexp"
)

// Filename patterns for the InfluxDB backup layouts in the wild:
//
//	1.x legacy:   meta.00, db.rp.shard.index (mydb.autogen.00001.00)
//	1.x portable: <ts>.manifest, <ts>.meta, <ts>.s<N>.tar.gz
//	2.x:          manifest.json, bolt/kv, timestamped *.bolt
var (
	legacyMetaRe       = regexp.MustCompile(`^meta\.\d+$`)
	legacyShardRe      = regexp.MustCompile(`^[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.\d+\.\d+$`)
	portableMetaRe     = regexp.MustCompile(`^.{2,}\.meta$`)
	portableShardRe    = regexp.MustCompile(`^.+\.s\d+\.tar\.gz$`)
	portableManifestRe = regexp.MustCompile(`^.{2,}\.manifest$`)
	boltRe             = regexp.MustCompile(`^.{2,}\.bolt$`)
)

const v2ManifestName = "manifest.json"

func isMetaFile(name string) bool {
	base := path.Base(name)
	if base == "bolt" || base == "kv" {
		return true
	}
	return legacyMetaRe.MatchString(base) || portableMetaRe.MatchString(base) || boltRe.MatchString(base)
}

func isShardFile(name string) bool {
	base := path.Base(name)
	return legacyShardRe.MatchString(base) || portableShardRe.MatchString(base)
}

func isManifestFile(name string) bool {
	base := path.Base(name)
	if base == v2ManifestName || base == "manifest" {
		return true
	}
	return portableManifestRe.MatchString(base)
}
