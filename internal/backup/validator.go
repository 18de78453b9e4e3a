package backup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// Options configures a validation run.
type Options struct {
	WorkDir       string
	DecryptionKey string
	Log           zerolog.Logger
}

// ValidateTarget classifies the path, extracts it when it is an archive,
// and runs the structural checks. It always returns a report; failures to
// even reach the checks (bad path, unreadable archive) become FAIL entries.
// Scratch directories are removed before this returns, pass or fail.
func ValidateTarget(path string, opts Options) *Report {
	report := newReport()

	kind, detail := Classify(path)
	switch kind {
	case KindInvalid:
		report.fail("path", "%s", detail)
		return report
	case KindDirectory:
		report.pass("path", "backup directory: %s", path)
		validateDirectory(path, report, opts.Log)
		return report
	default:
		report.pass("path", "backup archive: %s", path)
	}

	extractor := &Extractor{WorkDir: opts.WorkDir, DecryptionKey: opts.DecryptionKey, Log: opts.Log}
	root, cleanup, err := extractor.Extract(path)
	if err != nil {
		report.fail("extract", "%v", err)
		return report
	}
	defer cleanup()

	validateDirectory(root, report, opts.Log)
	return report
}

// validateDirectory runs the structural checks against an on-disk backup
// root, in order: manifest, database directories, per-directory file
// counts/sizes, metadata presence, manifest cross-reference.
func validateDirectory(root string, report *Report, log zerolog.Logger) {
	manifest := checkManifest(root, report, log)

	topDirs, topFiles, err := readTopLevel(root)
	if err != nil {
		report.fail("root", "cannot read backup root: %v", err)
		return
	}

	databases := databaseCandidates(manifest, topDirs)
	dataFiles := 0
	for _, db := range databases {
		dataFiles += checkDatabaseDir(root, db, report)
	}

	shardCount := checkTopLevelShards(topFiles, report, len(databases) == 0)
	dataFiles += shardCount

	// A backup with nothing restorable is broken even when a manifest
	// parses: zero data files is a hard failure either way.
	if len(databases) == 0 && dataFiles == 0 {
		report.fail("databases", "no databases found in backup")
	}

	checkMetadata(topFiles, report)
	checkManifestCrossRef(root, manifest, report)
}

// checkManifest records the manifest entry and returns the parsed manifest,
// or nil when absent or unparseable. Parse failures are warnings: backups
// may predate the manifest format.
func checkManifest(root string, report *Report, log zerolog.Logger) *Manifest {
	path, ok := findManifest(root)
	if !ok {
		report.warn("manifest", "no manifest file found (optional for some backup types)")
		return nil
	}
	manifest, err := parseManifest(path)
	if err != nil {
		log.Warn().Err(err).Str("manifest", path).Msg("manifest parse failed")
		report.warn("manifest", "manifest %s is unparseable: %v", filepath.Base(path), err)
		return nil
	}
	report.pass("manifest", "manifest %s parsed (%d file entries, %d databases)",
		filepath.Base(path), len(manifest.Files), len(manifest.Databases))
	return manifest
}

// databaseCandidates returns the database directory names to check. With a
// manifest naming databases, those are authoritative and each missing one
// is a hard failure. Without one, every non-internal top-level directory is
// a candidate, reported generically.
func databaseCandidates(manifest *Manifest, topDirs []string) []string {
	if manifest != nil && len(manifest.Databases) > 0 {
		return manifest.Databases
	}
	var candidates []string
	for _, dir := range topDirs {
		if strings.HasPrefix(dir, "_") {
			continue
		}
		candidates = append(candidates, dir)
	}
	return candidates
}

// checkDatabaseDir verifies presence, file count, and sizes for one
// database directory. Returns the number of data files found.
func checkDatabaseDir(root, db string, report *Report) int {
	dir := filepath.Join(root, db)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		report.fail("database "+db, "database directory missing")
		return 0
	}
	report.pass("database "+db, "database directory present")

	var files []FileInfo
	var totalSize int64
	var empty int
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		fi, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		files = append(files, FileInfo{Path: filepath.ToSlash(rel), Size: fi.Size()})
		totalSize += fi.Size()
		if fi.Size() == 0 {
			empty++
		}
		return nil
	})
	report.recordFiles(db, files)

	if len(files) == 0 {
		report.fail("files "+db, "no files in database directory")
		return 0
	}
	report.pass("files "+db, "%d files, %s", len(files), humanize.IBytes(uint64(totalSize)))
	if empty > 0 {
		report.warn("files "+db, "%d zero-byte file(s) (possibly truncated backup)", empty)
	}
	return len(files)
}

// checkTopLevelShards counts 1.x shard backup files sitting at the root.
// The entry is only emitted when no database directories exist, i.e. for
// flat portable/legacy backups.
func checkTopLevelShards(topFiles []FileInfo, report *Report, emit bool) int {
	var shards []FileInfo
	var totalSize int64
	var empty int
	for _, f := range topFiles {
		if !isShardFile(f.Path) {
			continue
		}
		shards = append(shards, f)
		totalSize += f.Size
		if f.Size == 0 {
			empty++
		}
	}
	if len(shards) == 0 || !emit {
		return len(shards)
	}
	report.pass("shards", "%d shard backup file(s), %s", len(shards), humanize.IBytes(uint64(totalSize)))
	if empty > 0 {
		report.warn("shards", "%d zero-byte shard file(s)", empty)
	}
	report.recordFiles(".", shards)
	return len(shards)
}

// checkMetadata looks for the meta/bolt/kv file a restore needs. Absence
// is a warning here, not a failure: a manifest-complete backup with intact
// database directories still passes structural validation.
func checkMetadata(topFiles []FileInfo, report *Report) {
	var found []string
	var empty []string
	for _, f := range topFiles {
		if !isMetaFile(f.Path) {
			continue
		}
		found = append(found, f.Path)
		if f.Size == 0 {
			empty = append(empty, f.Path)
		}
	}
	switch {
	case len(found) == 0:
		report.warn("metadata", "no metadata file found (a restore will need one)")
	case len(empty) > 0:
		report.warn("metadata", "metadata file is empty: %s", strings.Join(empty, ", "))
	default:
		report.pass("metadata", "metadata file found: %s", strings.Join(found, ", "))
	}
}

// checkManifestCrossRef verifies every file the manifest names exists under
// the root, by relative path or basename.
func checkManifestCrossRef(root string, manifest *Manifest, report *Report) {
	if manifest == nil || len(manifest.Files) == 0 {
		return
	}

	existing := map[string]bool{}
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			existing[filepath.ToSlash(rel)] = true
		}
		existing[filepath.Base(path)] = true
		return nil
	})

	var missing []string
	for _, entry := range manifest.Files {
		if existing[entry.Name] || existing[filepath.Base(entry.Name)] {
			continue
		}
		missing = append(missing, entry.Name)
	}
	if len(missing) > 0 {
		report.fail("manifest files", "%d manifest entr(ies) missing from backup: %s",
			len(missing), strings.Join(missing, ", "))
		return
	}
	report.pass("manifest files", "all %d manifest entries present", len(manifest.Files))
}

func readTopLevel(root string) (dirs []string, files []FileInfo, err error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
			continue
		}
		info, statErr := entry.Info()
		if statErr != nil {
			continue
		}
		files = append(files, FileInfo{Path: entry.Name(), Size: info.Size()})
	}
	return dirs, files, nil
}
