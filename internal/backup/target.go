package backup

import (
	"fmt"
	"os"
	"strings"

	"github.com/rowjay/influx-utility/internal/compress"
)

type TargetKind int

const (
	KindInvalid TargetKind = iota
	KindDirectory
	KindArchive
)

// Classify resolves what kind of backup target a path is. For KindInvalid
// the returned detail is the user-facing diagnostic.
func Classify(path string) (TargetKind, string) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KindInvalid, fmt.Sprintf("path does not exist: %s", path)
		}
		return KindInvalid, fmt.Sprintf("path is not readable: %v", err)
	}
	if info.IsDir() {
		return KindDirectory, ""
	}
	if isArchiveName(path) {
		return KindArchive, ""
	}
	return KindInvalid, fmt.Sprintf("unknown file type: %s (expected a directory or .tar/.tar.gz/.tgz/.tar.zst archive)", path)
}

// isArchiveName recognizes tar archives by extension, with an optional .enc
// suffix for DARE-encrypted archives.
func isArchiveName(path string) bool {
	name := strings.TrimSuffix(strings.ToLower(path), ".enc")
	_, ok := compress.ForArchiveName(name)
	return ok
}

func isEncryptedName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".enc")
}
