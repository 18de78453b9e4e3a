package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rowjay/influx-utility/internal/influx"
)

// DatabaseSummary is one database's slice of the report. Discarded after
// printing.
type DatabaseSummary struct {
	Name         string
	Measurements []MeasurementSummary
}

type MeasurementSummary struct {
	Name  string
	Stats influx.MeasurementStats
	Err   error // non-nil renders as "unavailable"
}

// Reporter queries the server and prints the statistics report. Databases
// are printed in the order the server returns them; internal databases
// (leading underscore) are skipped.
type Reporter struct {
	Client   influx.Querier
	Log      zerolog.Logger
	Detailed bool
	Database string // restrict the report to one database when set
}

// Run produces the full report on w. Per-measurement query failures are
// rendered inline and do not fail the run; connection, authentication, and
// unknown-database errors do.
func (r *Reporter) Run(w io.Writer) error {
	if err := r.Client.Ping(); err != nil {
		return err
	}

	databases, err := r.Client.Databases()
	if err != nil {
		return err
	}
	if r.Database != "" {
		if !contains(databases, r.Database) {
			return fmt.Errorf("%w: %s", influx.ErrDatabaseNotFound, r.Database)
		}
		databases = []string{r.Database}
	}

	if len(databases) == 0 {
		fmt.Fprintln(w, "No databases found or unable to connect.")
		return nil
	}

	summaries := r.collect(databases)
	r.render(w, summaries)
	return nil
}

func (r *Reporter) collect(databases []string) []DatabaseSummary {
	var summaries []DatabaseSummary
	for _, db := range databases {
		if strings.HasPrefix(db, "_") {
			continue
		}
		summary := DatabaseSummary{Name: db}
		measurements, err := r.Client.Measurements(db)
		if err != nil {
			r.Log.Warn().Err(err).Str("database", db).Msg("listing measurements failed")
		}
		for _, m := range measurements {
			entry := MeasurementSummary{Name: m}
			if r.Detailed {
				entry.Stats, entry.Err = r.Client.MeasurementStats(db, m)
				if entry.Err != nil {
					r.Log.Warn().Err(entry.Err).Str("database", db).Str("measurement", m).Msg("measurement stats failed")
				}
			}
			summary.Measurements = append(summary.Measurements, entry)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

const rule = "================================================================================"

func (r *Reporter) render(w io.Writer, summaries []DatabaseSummary) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "InfluxDB Instance Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "\nTotal Databases: %d\n", len(summaries))
	fmt.Fprintln(w, strings.Repeat("-", len(rule)))

	for _, summary := range summaries {
		fmt.Fprintf(w, "\nDatabase: %s\n", summary.Name)
		fmt.Fprintf(w, "  Measurements: %d\n", len(summary.Measurements))

		if !r.Detailed || len(summary.Measurements) == 0 {
			continue
		}
		fmt.Fprintln(w, "  Measurement details:")
		for _, m := range summary.Measurements {
			if m.Err != nil {
				fmt.Fprintf(w, "    - %s: unavailable (%v)\n", m.Name, m.Err)
				continue
			}
			fmt.Fprintf(w, "    - %s:\n", m.Name)
			fmt.Fprintf(w, "        Points: %d\n", m.Stats.Points)
			if m.Stats.First != "" && m.Stats.Last != "" {
				fmt.Fprintf(w, "        Time range: %s to %s\n", m.Stats.First, m.Stats.Last)
			}
		}
	}

	fmt.Fprintln(w, "\n"+rule)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
