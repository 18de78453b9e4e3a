package backup

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Entry is one check result. The report keeps entries in check order.
type Entry struct {
	Check  string
	Status Status
	Detail string
}

type FileInfo struct {
	Path string
	Size int64
}

// Report collects check results for a single validation run. It is built
// up as checks execute, rendered once, and discarded.
type Report struct {
	Entries []Entry

	// Files holds every file discovered per database directory, printed
	// only in verbose mode.
	Files map[string][]FileInfo

	databases []string
}

func newReport() *Report {
	return &Report{Files: map[string][]FileInfo{}}
}

func (r *Report) pass(check, format string, args ...any) {
	r.add(check, StatusPass, format, args...)
}

func (r *Report) warn(check, format string, args ...any) {
	r.add(check, StatusWarn, format, args...)
}

func (r *Report) fail(check, format string, args ...any) {
	r.add(check, StatusFail, format, args...)
}

func (r *Report) add(check string, status Status, format string, args ...any) {
	r.Entries = append(r.Entries, Entry{Check: check, Status: status, Detail: fmt.Sprintf(format, args...)})
}

func (r *Report) recordFiles(db string, files []FileInfo) {
	if _, ok := r.Files[db]; !ok {
		r.databases = append(r.databases, db)
	}
	r.Files[db] = append(r.Files[db], files...)
}

// OK reports whether the backup passed every hard check. Warnings never
// flip the result.
func (r *Report) OK() bool {
	for _, e := range r.Entries {
		if e.Status == StatusFail {
			return false
		}
	}
	return true
}

// Render prints the report. Non-verbose output shows PASS and FAIL entries
// only; verbose adds WARN entries and the per-database file listing.
func (r *Report) Render(w io.Writer, verbose bool) {
	for _, e := range r.Entries {
		if e.Status == StatusWarn && !verbose {
			continue
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker(e.Status), e.Check, e.Detail)
	}

	if verbose {
		for _, db := range r.databases {
			files := r.Files[db]
			if len(files) == 0 {
				continue
			}
			fmt.Fprintf(w, "\nFiles in %s:\n", db)
			for _, f := range files {
				fmt.Fprintf(w, "  %s  %s\n", humanize.IBytes(uint64(f.Size)), f.Path)
			}
		}
	}

	if r.OK() {
		fmt.Fprintln(w, "\nBackup validation passed")
	} else {
		fmt.Fprintln(w, "\nBackup validation FAILED")
	}
}

func marker(s Status) string {
	switch s {
	case StatusPass:
		return "✓"
	case StatusWarn:
		return "⚠"
	default:
		return "✗"
	}
}
