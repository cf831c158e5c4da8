package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/county-home-values/internal/domain"
)

const dateLayout = "2006-01-02"

var errNonFinite = errors.New("non-finite value")

// Identity columns that must be present in the header.
const (
	colRegionID  = "RegionID"
	colName      = "RegionName"
	colState     = "State"
	colMetro     = "Metro"
	colStateFIPS = "StateCodeFIPS"
	colMuniFIPS  = "MunicipalCodeFIPS"
)

var requiredColumns = []string{colRegionID, colName, colState, colMetro, colStateFIPS, colMuniFIPS}

// Reader loads the wide ZHVI county table from a CSV file.
// It implements pipeline.TableExtractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads and validates the whole file. Any problem is returned as a
// *domain.LoadError; a partial table is never returned.
func (r *Reader) Extract(ctx context.Context) (domain.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Source: r.path, Err: err}
	}
	defer f.Close()

	start := time.Now()
	t, err := Parse(ctx, f, r.path)
	if err != nil {
		return domain.Table{}, err
	}
	r.logger.Info("table loaded",
		"path", r.path,
		"records", len(t.Records),
		"dates", len(t.Dates),
		"first_date", t.Dates[0],
		"last_date", t.Dates[len(t.Dates)-1],
		"duration", time.Since(start),
	)
	return t, nil
}

// header holds the column positions resolved from the header row.
type header struct {
	idx   map[string]int
	dates []int // column positions of date columns, in file order
}

// Parse decodes a wide ZHVI table from src. source names the input in errors.
func Parse(ctx context.Context, src io.Reader, source string) (domain.Table, error) {
	cr := csv.NewReader(src)

	row, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty file")
		}
		return domain.Table{}, &domain.LoadError{Source: source, Line: 1, Err: err}
	}
	h, dates, err := parseHeader(row)
	if err != nil {
		return domain.Table{}, &domain.LoadError{Source: source, Line: 1, Err: err}
	}

	t := domain.Table{Dates: dates}
	for {
		if len(t.Records)%1000 == 0 && ctx.Err() != nil {
			return domain.Table{}, &domain.LoadError{Source: source, Err: ctx.Err()}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			loadErr := &domain.LoadError{Source: source, Err: err}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				loadErr.Line = parseErr.Line
			}
			return domain.Table{}, loadErr
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRecord(h, row)
		if err != nil {
			return domain.Table{}, &domain.LoadError{Source: source, Line: line, Err: err}
		}
		t.Records = append(t.Records, rec)
	}

	if len(t.Records) == 0 {
		return domain.Table{}, &domain.LoadError{Source: source, Err: errors.New("no data rows")}
	}
	return t, nil
}

func parseHeader(row []string) (header, []string, error) {
	h := header{idx: make(map[string]int, len(row))}
	var dates []string
	var last time.Time

	for i, name := range row {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if d, err := time.Parse(dateLayout, name); err == nil {
			if len(dates) > 0 && !d.After(last) {
				return header{}, nil, fmt.Errorf("date column %s is not after %s", name, dates[len(dates)-1])
			}
			last = d
			dates = append(dates, name)
			h.dates = append(h.dates, i)
			continue
		}
		if len(dates) > 0 {
			return header{}, nil, fmt.Errorf("column %q follows the date columns", name)
		}
		h.idx[name] = i
	}

	for _, col := range requiredColumns {
		if _, ok := h.idx[col]; !ok {
			return header{}, nil, fmt.Errorf("missing column %q", col)
		}
	}
	if len(dates) == 0 {
		return header{}, nil, errors.New("no date columns")
	}
	return h, dates, nil
}

func parseRecord(h header, row []string) (domain.RawRecord, error) {
	field := func(col string) string { return strings.TrimSpace(row[h.idx[col]]) }

	id, err := strconv.Atoi(field(colRegionID))
	if err != nil {
		return domain.RawRecord{}, fmt.Errorf("%s: %w", colRegionID, err)
	}
	stateFIPS, err := strconv.Atoi(field(colStateFIPS))
	if err != nil {
		return domain.RawRecord{}, fmt.Errorf("%s: %w", colStateFIPS, err)
	}
	muniFIPS, err := strconv.Atoi(field(colMuniFIPS))
	if err != nil {
		return domain.RawRecord{}, fmt.Errorf("%s: %w", colMuniFIPS, err)
	}

	name, state := field(colName), field(colState)
	rec := domain.RawRecord{
		RegionID:      id,
		Name:          name,
		County:        domain.CountyLabel(name, state),
		State:         state,
		Metro:         field(colMetro),
		StateFIPS:     stateFIPS,
		MunicipalFIPS: muniFIPS,
		Values:        make([]float64, len(h.dates)),
	}
	for i, col := range h.dates {
		v, err := parseValue(row[col])
		if err != nil {
			return domain.RawRecord{}, fmt.Errorf("value in column %d: %w", col+1, err)
		}
		rec.Values[i] = v
	}
	return rec, nil
}

// parseValue treats an empty cell as a missing observation. Any other cell
// must hold a finite number.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", errNonFinite, s)
	}
	return v, nil
}
