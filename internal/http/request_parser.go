// Package http serves the JSON API.
//
// This file holds the reusable parsing of query strings, path values and JSON
// bodies shared by every handler.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core"
	"moneta/internal/timezone"
)

const (
	maxBodyBytes = 1 << 20
	maxTake      = 100

	userIDHeader = "X-User-ID"
)

var (
	errMissingUser   = errors.New("missing " + userIDHeader + " header")
	errEmptyBody     = errors.New("request body is empty")
	errMissingAmount = errors.New("amount is required")
)

// malformedError marks a request the server could not even decode.
type malformedError struct{ err error }

func (e *malformedError) Error() string { return e.err.Error() }
func (e *malformedError) Unwrap() error { return e.err }

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &malformedError{errEmptyBody}
		}
		return &malformedError{fmt.Errorf("invalid JSON body: %w", err)}
	}
	if dec.More() {
		return &malformedError{errors.New("request body must contain a single JSON object")}
	}
	return nil
}

// parsePage reads ?page= and ?take=. Missing values are left at zero so the
// service applies its default; take is capped.
func parsePage(r *http.Request) (core.PageRequest, error) {
	q := r.URL.Query()
	var page core.PageRequest
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &page.Page}, {"take", &page.Take}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return core.PageRequest{}, core.Invalid(fmt.Errorf("%s must be a positive integer", p.name))
		}
		*p.dst = n
	}
	if page.Take > maxTake {
		page.Take = maxTake
	}
	return page, nil
}

// parseDateQuery reads ?date=. An absent value yields nil, meaning now.
func parseDateQuery(r *http.Request, tz *timezone.Normalizer) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("date"))
	if v == "" {
		return nil, nil
	}
	t, err := tz.Parse(v)
	if err != nil {
		return nil, core.Invalid(err)
	}
	return &t, nil
}

func parseKind(r *http.Request) (core.EntryKind, error) {
	kind, err := core.ParseEntryKind(r.PathValue("kind"))
	if err != nil {
		return "", core.NotFound("entry kind", r.PathValue("kind"))
	}
	return kind, nil
}

// parseOptionalDate converts a JSON date string; nil stays nil.
func parseOptionalDate(tz *timezone.Normalizer, field string, v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := tz.Parse(*v)
	if err != nil {
		return nil, core.Invalid(fmt.Errorf("%s: %w", field, err))
	}
	return &t, nil
}

// amountInput holds an amount as sent by the client, either a JSON number or
// a string such as "12,50".
type amountInput struct{ raw string }

func (a *amountInput) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.raw)
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("amount must be a number or a string")
	}
	a.raw = n.String()
	return nil
}

func (a *amountInput) parse() (decimal.Decimal, error) {
	d, err := core.ParseAmount(a.raw)
	if err != nil {
		return decimal.Zero, core.Invalid(fmt.Errorf("amount %q: %w", a.raw, err))
	}
	return d, nil
}

func requireAmount(a *amountInput) (decimal.Decimal, error) {
	if a == nil {
		return decimal.Zero, core.Invalid(errMissingAmount)
	}
	return a.parse()
}

// optionalAmount parses a patch amount; nil stays nil.
func optionalAmount(a *amountInput) (*decimal.Decimal, error) {
	if a == nil {
		return nil, nil
	}
	d, err := a.parse()
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizeInput(*s)
	return &v
}
