package backup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rowjay/influx-utility/internal/compress"
	"github.com/rowjay/influx-utility/internal/cryptoutil"
	"github.com/rowjay/influx-utility/internal/lock"
)

// Extractor unpacks a backup archive into a scratch directory. The scratch
// directory lives exactly as long as one validation run.
type Extractor struct {
	// WorkDir selects a fixed extraction workspace; an anonymous temp dir
	// is used when empty. A fixed workspace is flock-guarded since
	// concurrent runs would unpack into the same place.
	WorkDir string

	// DecryptionKey (base64 or hex) is required for .enc archives.
	DecryptionKey string

	Log zerolog.Logger
}

// Extract unpacks the archive at path and returns the backup root together
// with a cleanup function. The cleanup function removes the scratch
// directory and must be called on every exit path. When the archive wraps
// everything in a single top-level directory (the influxdb_backup_* layout),
// the returned root is that inner directory.
func (e *Extractor) Extract(path string) (string, func(), error) {
	scratch, release, err := e.scratchDir()
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if rmErr := os.RemoveAll(scratch); rmErr != nil {
			e.Log.Warn().Err(rmErr).Str("dir", scratch).Msg("scratch dir cleanup failed")
		}
		release()
	}

	if err := e.unpack(path, scratch); err != nil {
		cleanup()
		return "", nil, err
	}

	root, err := resolveRoot(scratch)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return root, cleanup, nil
}

func (e *Extractor) scratchDir() (string, func(), error) {
	if e.WorkDir == "" {
		dir, err := os.MkdirTemp("", "influx-validate-")
		if err != nil {
			return "", nil, fmt.Errorf("create scratch dir: %w", err)
		}
		return dir, func() {}, nil
	}

	if err := os.MkdirAll(e.WorkDir, 0o750); err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	guard, err := lock.Acquire(filepath.Join(e.WorkDir, ".ifx.lock"))
	if err != nil {
		return "", nil, err
	}
	scratch := filepath.Join(e.WorkDir, "scratch")
	// Leftovers from a crashed run are stale by definition once we hold
	// the lock.
	if err := os.RemoveAll(scratch); err != nil {
		_ = guard.Release()
		return "", nil, fmt.Errorf("clear work dir: %w", err)
	}
	if err := os.MkdirAll(scratch, 0o750); err != nil {
		_ = guard.Release()
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return scratch, func() { _ = guard.Release() }, nil
}

func (e *Extractor) unpack(path, dest string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	name := path
	if isEncryptedName(path) {
		if e.DecryptionKey == "" {
			return errors.New("archive is encrypted (.enc) but no decryption key was provided")
		}
		key, err := cryptoutil.ParseKey(e.DecryptionKey)
		if err != nil {
			return err
		}
		reader, err = cryptoutil.DecryptReader(reader, key)
		if err != nil {
			return fmt.Errorf("decrypt archive: %w", err)
		}
		name = strings.TrimSuffix(path, filepath.Ext(path))
	}

	kind, ok := compress.ForArchiveName(name)
	if !ok {
		return fmt.Errorf("unrecognized archive name: %s", path)
	}
	decompressed, err := compress.WrapReader(kind, reader)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	defer decompressed.Close()

	tr := tar.NewReader(decompressed)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		default:
			// Symlinks and device nodes never appear in influx backups;
			// skip rather than materialize them.
			e.Log.Debug().Str("entry", hdr.Name).Msg("skipping non-regular archive entry")
		}
	}
}

// securePath joins an archive member name onto dest, rejecting absolute
// names and path traversal.
func securePath(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry escapes extraction dir: %s", name)
	}
	return filepath.Join(dest, cleaned), nil
}

// resolveRoot descends into a single wrapper directory, matching how
// `influx backup` output is usually tarred up from its parent.
func resolveRoot(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(scratch, entries[0].Name()), nil
	}
	return scratch, nil
}
