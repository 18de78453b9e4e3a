package influx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb1-client/models"
	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/rowjay/influx-utility/internal/config"
)

// MeasurementStats holds the detailed figures for a single measurement.
type MeasurementStats struct {
	Points int64
	First  string
	Last   string
}

// Querier is the read-only view of an InfluxDB server the stats reporter
// needs. Satisfied by *Client; tests substitute a fake.
type Querier interface {
	Ping() error
	Databases() ([]string, error)
	Measurements(db string) ([]string, error)
	MeasurementStats(db, measurement string) (MeasurementStats, error)
}

type Client struct {
	http    client.Client
	timeout time.Duration
}

// Connect builds an HTTP client for the configured endpoint. No request is
// made until Ping or a query runs.
func Connect(cfg config.InfluxConfig) (*Client, error) {
	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	httpClient, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:               fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		Username:           cfg.Username,
		Password:           cfg.Password,
		Timeout:            timeout,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: httpClient, timeout: timeout}, nil
}

func (c *Client) Close() error {
	return c.http.Close()
}

// Ping verifies the server is reachable.
func (c *Client) Ping() error {
	if _, _, err := c.http.Ping(c.timeout); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}

// Databases lists databases in the order the server returns them.
func (c *Client) Databases() ([]string, error) {
	rows, err := c.query("", "SHOW DATABASES")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range rows {
		for _, values := range row.Values {
			if len(values) == 0 {
				continue
			}
			if name, ok := values[0].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// Measurements lists measurement names for a database.
func (c *Client) Measurements(db string) ([]string, error) {
	rows, err := c.query(db, "SHOW MEASUREMENTS")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, row := range rows {
		for _, values := range row.Values {
			if len(values) == 0 {
				continue
			}
			if name, ok := values[0].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

// MeasurementStats returns the approximate point count and recorded time
// range for one measurement.
func (c *Client) MeasurementStats(db, measurement string) (MeasurementStats, error) {
	var stats MeasurementStats

	rows, err := c.query(db, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(measurement)))
	if err != nil {
		return stats, err
	}
	stats.Points = firstCount(rows)

	first, err := boundaryTime(c, db, measurement, "ASC")
	if err != nil {
		return stats, err
	}
	stats.First = first

	last, err := boundaryTime(c, db, measurement, "DESC")
	if err != nil {
		return stats, err
	}
	stats.Last = last

	return stats, nil
}

func boundaryTime(c *Client, db, measurement, order string) (string, error) {
	rows, err := c.query(db, fmt.Sprintf(`SELECT * FROM %s ORDER BY time %s LIMIT 1`, quoteIdent(measurement), order))
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		timeIdx := -1
		for i, col := range row.Columns {
			if col == "time" {
				timeIdx = i
				break
			}
		}
		if timeIdx < 0 {
			continue
		}
		for _, values := range row.Values {
			if timeIdx < len(values) {
				if ts, ok := values[timeIdx].(string); ok {
					return ts, nil
				}
			}
		}
	}
	return "", nil
}

// firstCount picks the first non-time numeric value out of a COUNT(*) result.
// COUNT(*) produces one column per field; the first one stands in for the
// point count, as an approximation.
func firstCount(rows []models.Row) int64 {
	for _, row := range rows {
		for _, values := range row.Values {
			for i, v := range values {
				if i < len(row.Columns) && row.Columns[i] == "time" {
					continue
				}
				if n, ok := toInt64(v); ok {
					return n
				}
			}
		}
	}
	return 0
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

var identReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteIdent renders a name as a double-quoted InfluxQL identifier.
// InfluxQL escapes backslashes and embedded double quotes, which is not
// what Go's %q produces.
func quoteIdent(name string) string {
	return `"` + identReplacer.Replace(name) + `"`
}

func (c *Client) query(db, command string) ([]models.Row, error) {
	resp, err := c.http.Query(client.NewQuery(command, db, ""))
	if err != nil {
		return nil, classifyQueryErr(err)
	}
	if err := resp.Error(); err != nil {
		return nil, classifyQueryErr(err)
	}
	var rows []models.Row
	for _, result := range resp.Results {
		rows = append(rows, result.Series...)
	}
	return rows, nil
}

func classifyQueryErr(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "authoriz") || strings.Contains(msg, "authenticat") || strings.Contains(msg, "credential") {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return err
}
