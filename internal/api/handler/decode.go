package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

const (
	fieldTitle       = "Title"
	fieldSpecs       = "ItemSpecifics"
	fieldDescription = "Description"
)

// Columns accepted in a classify row. The first three describe the catalog
// product, the last two the query item.
const (
	colProductTitle   = "epidtitle"
	colProductSpecs   = "productidentifier"
	colProductDetails = "productdetails"
	colItemTitle      = "itemtitle"
	colItemSpecs      = "itemspecifics"
)

var rowColumns = map[string]bool{
	colProductTitle:   true,
	colProductSpecs:   true,
	colProductDetails: true,
	colItemTitle:      true,
	colItemSpecs:      true,
}

// ValidationError lists per-field problems with a request.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}{Error: "validation failed", Fields: e.Fields})
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrInvalidInput }

func badRequest(format string, args ...any) error {
	return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, format, args...)
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, badRequest("Empty request body")
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusRequestEntityTooLarge,
				"request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, badRequest("can't read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, badRequest("Empty request body")
	}
	return body, nil
}

// decodeQuery validates a match request body: a JSON object with a string
// Title, optional ItemSpecifics of string keys and values, and an optional
// string Description. Other fields are ignored.
func decodeQuery(r *http.Request) (matching.Query, error) {
	body, err := readBody(r)
	if err != nil {
		return matching.Query{}, err
	}
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return matching.Query{}, badRequest("Can't parse request body as JSON, error: %v", err)
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return matching.Query{}, badRequest("A root JSON object is expected")
	}

	fields := map[string]string{}
	var q matching.Query
	switch t := obj[fieldTitle].(type) {
	case string:
		q.Title = t
	case nil:
		if _, present := obj[fieldTitle]; !present {
			fields[fieldTitle] = fmt.Sprintf("Field '%s' is mandatory", fieldTitle)
		} else {
			fields[fieldTitle] = fieldTitle + " must be a string"
		}
	default:
		fields[fieldTitle] = fieldTitle + " must be a string"
	}

	if raw, present := obj[fieldSpecs]; present {
		specs, ok := raw.(map[string]any)
		if !ok {
			fields[fieldSpecs] = fmt.Sprintf("Object value of '%s' is expected", fieldSpecs)
		} else {
			q.Specs = make(map[string]string, len(specs))
			for k, v := range specs {
				s, ok := v.(string)
				if !ok {
					fields[fieldSpecs] = "Only string key-values are allowed in " + fieldSpecs
					break
				}
				q.Specs[k] = s
			}
		}
	}

	if raw, present := obj[fieldDescription]; present && raw != nil {
		d, ok := raw.(string)
		if !ok {
			fields[fieldDescription] = fieldDescription + " must be a string"
		} else {
			q.Description = &d
		}
	}

	if len(fields) > 0 {
		return matching.Query{}, &ValidationError{Fields: fields}
	}
	return q, nil
}

type row map[string]*string

// decodeRows validates a classify body: a JSON array of objects whose keys
// are known columns and whose values are strings or null.
func decodeRows(r *http.Request) ([]row, error) {
	body, err := readBody(r)
	if err != nil {
		return nil, err
	}
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, badRequest("Can't parse request body as JSON, error: %v", err)
	}
	arr, ok := root.([]any)
	if !ok {
		return nil, badRequest("A root JSON array is expected")
	}
	rows := make([]row, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, badRequest("row %d is not a JSON object", i)
		}
		rw := make(row, len(obj))
		for col, v := range obj {
			if !rowColumns[col] {
				return nil, badRequest("Unknown field (column name) : %s", col)
			}
			switch s := v.(type) {
			case nil:
				rw[col] = nil
			case string:
				rw[col] = &s
			default:
				return nil, badRequest("There are non-string and non-null field (column '%s') value : %v", col, v)
			}
		}
		rows[i] = rw
	}
	return rows, nil
}
