package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks input that could not be decoded at all.
var errBadRequest = errors.New("bad request")

// ParseWindow builds a window from the query. Absent parameters keep the
// values of the default window for now; the mode defaults to sliding.
//
//	mode=monthly&year=2024&month=2
//	mode=sliding&start=2024-01-15&end=2024-02-15
func ParseWindow(q url.Values, now time.Time) (core.Window, error) {
	w := core.DefaultWindow(now)

	mode, err := core.ParseWindowMode(q.Get("mode"))
	if err != nil {
		return core.Window{}, &core.ValidationError{Field: "mode", Err: err}
	}
	w.Mode = mode

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Window{}, &core.ValidationError{Field: "start", Err: err}
		}
		w.Sliding.Start = d
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Window{}, &core.ValidationError{Field: "end", Err: err}
		}
		w.Sliding.End = d
	}

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.Window{}, &core.ValidationError{Field: "year", Err: core.ErrInvalidDate}
		}
		w.Monthly.Year = y
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.Window{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
		}
		w.Monthly.Month = time.Month(m)
	}
	if err := w.Monthly.Validate(); err != nil {
		return core.Window{}, err
	}

	return w, nil
}

// ParseTagIDs reads a comma separated id list; empty means no tag filter.
func ParseTagIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, &core.ValidationError{Field: "tags", Err: fmt.Errorf("invalid tag id %q", p)}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseOptionalType returns "" for an absent type.
func ParseOptionalType(s string) (core.TxType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := core.ParseTxType(s)
	if err != nil {
		return "", &core.ValidationError{Field: "type", Err: err}
	}
	return t, nil
}

// ParseTimestamp accepts a calendar date or an RFC 3339 timestamp; empty
// means now. The wall clock of the input is kept, offset included.
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if d, err := core.ParseDate(s); err == nil {
		return d.Time, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	return t, nil
}

// ParseAmountNumber accepts a JSON number or numeric string.
func ParseAmountNumber(n json.Number) (decimal.Decimal, error) {
	d, err := core.ParseAmount(n.String())
	if err != nil {
		return decimal.Zero, &core.ValidationError{Field: "amount", Err: err}
	}
	return d, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

// decodeJSON reads one JSON object into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", errBadRequest)
	}
	return nil
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
