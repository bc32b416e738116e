// Package sfda holds the Saudi FDA drug list used to sanity-check drug
// codes cited in claim rejections.
package sfda

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Record is one drug list entry. Fields carries the full CSV row so the
// deterministic justification can quote the registered entry verbatim.
type Record struct {
	Code   string
	Name   string
	Fields map[string]string
}

// String renders the record the way it is embedded in justification text.
func (r Record) String() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, r.Fields[k]))
	}
	return strings.Join(parts, ", ")
}

// Registry is an in-memory, read-only drug list keyed by code.
type Registry struct {
	byCode map[string]Record
}

// Load parses a drug list CSV. The code and name columns are located by
// header (any header containing "code" or "name", case-insensitive);
// exports from different source systems disagree on exact header text. A
// file without a recognizable header is read as bare code,name rows.
func Load(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("sfda: read header: %w", err)
	}

	codeIdx, nameIdx := 0, 1
	var header []string
	isHeader := false
	for i, h := range first {
		lowered := strings.ToLower(h)
		if strings.Contains(lowered, "code") {
			codeIdx = i
			isHeader = true
		}
		if strings.Contains(lowered, "name") {
			nameIdx = i
			isHeader = true
		}
	}
	if isHeader {
		header = first
	}

	reg := &Registry{byCode: make(map[string]Record)}

	add := func(row []string) {
		if codeIdx >= len(row) {
			return
		}
		rec := Record{Code: strings.TrimSpace(row[codeIdx]), Fields: make(map[string]string, len(header))}
		if rec.Code == "" {
			return
		}
		if nameIdx < len(row) {
			rec.Name = strings.TrimSpace(row[nameIdx])
		}
		for i, h := range header {
			if i < len(row) && row[i] != "" {
				rec.Fields[h] = row[i]
			}
		}
		// First entry for a code wins; the list carries re-registrations.
		if _, ok := reg.byCode[rec.Code]; !ok {
			reg.byCode[rec.Code] = rec
		}
	}

	if !isHeader {
		add(first)
	}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sfda: read row: %w", err)
		}
		add(row)
	}
	return reg, nil
}

// LoadFile loads a drug list CSV from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sfda: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup finds the registry entry for a drug code.
func (reg *Registry) Lookup(code string) (Record, bool) {
	if reg == nil {
		return Record{}, false
	}
	rec, ok := reg.byCode[strings.TrimSpace(code)]
	return rec, ok
}

// NameByCode returns the drug name for a code, or "" when unknown.
func (reg *Registry) NameByCode(code string) string {
	rec, ok := reg.Lookup(code)
	if !ok {
		return ""
	}
	return rec.Name
}

// Len reports how many distinct codes are loaded.
func (reg *Registry) Len() int {
	if reg == nil {
		return 0
	}
	return len(reg.byCode)
}
