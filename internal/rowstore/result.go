package rowstore

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Row is one record as returned by the remote, keyed by column name.
type Row map[string]any

// Result is the outcome of a successful call.  Raw keeps the body exactly
// as the remote sent it; Data is the decoded view of the same rows.
type Result struct {
	Data  []Row
	Count *int
	Raw   json.RawMessage
}

// String renders the result the way it is echoed back to HTTP callers:
//
//	data=[{"id":1,"status":"parked"}] count=None
func (r Result) String() string {
	var b strings.Builder
	b.WriteString("data=")
	if len(r.Raw) == 0 {
		b.WriteString("[]")
	} else {
		var buf bytes.Buffer
		if err := json.Compact(&buf, r.Raw); err != nil {
			b.Write(r.Raw)
		} else {
			b.Write(buf.Bytes())
		}
	}
	b.WriteString(" count=")
	if r.Count == nil {
		b.WriteString("None")
	} else {
		b.WriteString(strconv.Itoa(*r.Count))
	}
	return b.String()
}

func decodeResult(body []byte, contentRange string) (Result, error) {
	res := Result{Raw: json.RawMessage(body)}
	// Minimal representation answers carry an empty body.
	if len(bytes.TrimSpace(body)) == 0 {
		res.Raw = json.RawMessage("[]")
		res.Data = []Row{}
	} else if err := json.Unmarshal(body, &res.Data); err != nil {
		return Result{}, err
	}
	res.Count = parseContentRange(contentRange)
	return res, nil
}

// parseContentRange extracts the total from "0-0/1"; "*" or a missing
// header yields nil.
func parseContentRange(v string) *int {
	i := strings.LastIndexByte(v, '/')
	if i < 0 {
		return nil
	}
	n, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return nil
	}
	return &n
}
