package materials

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"material-reconciler/core/utils"

	"github.com/goccy/go-json"
)

// ParseBatch reads a batch file. JSON input is either a ReconcileRequest or
// a bare array of materials. CSV input needs a header row with at least a
// "name" column; "id", "category" and "quantity" are optional.
func ParseBatch(r io.Reader, format string) (ReconcileRequest, error) {
	switch strings.ToLower(format) {
	case "json":
		return parseJSONBatch(r)
	case "csv":
		return parseCSVBatch(r)
	default:
		return ReconcileRequest{}, fmt.Errorf("unsupported batch format %q", format)
	}
}

func parseJSONBatch(r io.Reader) (ReconcileRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ReconcileRequest{}, err
	}
	data = bytes.TrimSpace(data)

	var req ReconcileRequest
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &req.Materials)
	} else {
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return ReconcileRequest{}, fmt.Errorf("failed to decode batch: %w", err)
	}
	return req, nil
}

func parseCSVBatch(r io.Reader) (ReconcileRequest, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ReconcileRequest{}, errors.New("batch file is empty")
		}
		return ReconcileRequest{}, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["name"]; !ok {
		return ReconcileRequest{}, errors.New("batch header has no name column")
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var req ReconcileRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ReconcileRequest{}, fmt.Errorf("line %d: %w", line, err)
		}

		m := MaterialInput{
			Name:     field(rec, "name"),
			Category: field(rec, "category"),
			Quantity: utils.ToFloat(field(rec, "quantity")),
		}
		if id := strings.TrimSpace(field(rec, "id")); id != "" {
			m.ID = id
		}
		req.Materials = append(req.Materials, m)
	}
	return req, nil
}
