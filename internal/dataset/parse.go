package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var errEmptyFile = errors.New("file is empty")

// parseDelimited reads a headed CSV/TSV table. With strict set every row must
// have as many fields as the header.
func parseDelimited(r io.Reader, comma rune, strict bool) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	if strict {
		reader.FieldsPerRecord = 0
	} else {
		reader.FieldsPerRecord = -1
		reader.LazyQuotes = true
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	columns := normalizeColumns(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, fitRow(record, len(columns)))
	}
	return columns, rows, nil
}

// parseLabelledText reads the headerless text/emotion layout. Lines are split
// at the last separator so the text itself may contain it. The separator comes
// from the first line carrying a tab or a semicolon, tab winning.
func parseLabelledText(r io.Reader) ([]string, [][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		sep   string
		lines []string
	)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sep == "" {
			switch {
			case strings.Contains(line, "\t"):
				sep = "\t"
			case strings.Contains(line, ";"):
				sep = ";"
			}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, errEmptyFile
	}

	rows := make([][]string, len(lines))
	for i, line := range lines {
		text, label := line, ""
		if sep != "" {
			if idx := strings.LastIndex(line, sep); idx >= 0 {
				text, label = line[:idx], line[idx+len(sep):]
			}
		}
		rows[i] = []string{strings.TrimSpace(text), strings.TrimSpace(label)}
	}
	return []string{ColumnText, ColumnEmotion}, rows, nil
}

// parseJSON accepts a top-level array of objects, a stream of newline-delimited
// objects, or a single column-oriented object as written by pandas
// (column -> row index -> value). Columns are the union of keys in first-seen order.
func parseJSON(r io.Reader) ([]string, [][]string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	first, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, nil, errEmptyFile
	}
	if err != nil {
		return nil, nil, err
	}

	var objects []orderedObject
	switch first {
	case json.Delim('['):
		for dec.More() {
			if _, err := expectDelim(dec, '{'); err != nil {
				return nil, nil, err
			}
			obj, err := readObject(dec)
			if err != nil {
				return nil, nil, err
			}
			objects = append(objects, obj)
		}
		if _, err := expectDelim(dec, ']'); err != nil {
			return nil, nil, err
		}
	case json.Delim('{'):
		for {
			obj, err := readObject(dec)
			if err != nil {
				return nil, nil, err
			}
			objects = append(objects, obj)
			if !dec.More() {
				break
			}
			if _, err := expectDelim(dec, '{'); err != nil {
				return nil, nil, err
			}
		}
	default:
		return nil, nil, fmt.Errorf("expected JSON object or array, got %v", first)
	}

	if len(objects) == 0 {
		return nil, nil, errEmptyFile
	}
	if len(objects) == 1 {
		if transposed, ok := transposeColumns(objects[0]); ok {
			objects = transposed
		}
	}

	var raw []string
	seen := make(map[string]struct{})
	for _, obj := range objects {
		for _, key := range obj.keys {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			raw = append(raw, key)
		}
	}

	rows := make([][]string, len(objects))
	for i, obj := range objects {
		row := make([]string, len(raw))
		for j, key := range raw {
			row[j] = obj.values[key]
		}
		rows[i] = row
	}
	return normalizeColumns(raw), rows, nil
}

type orderedObject struct {
	keys   []string
	values map[string]string
	// nested keeps object-valued members so a column-oriented file can be transposed.
	nested map[string]json.RawMessage
}

// readObject consumes the members of an object whose opening brace was
// already read.
func readObject(dec *json.Decoder) (orderedObject, error) {
	obj := orderedObject{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return obj, err
		}
		key, ok := tok.(string)
		if !ok {
			return obj, fmt.Errorf("unexpected object key %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return obj, fmt.Errorf("decode %q: %w", key, err)
		}
		if _, dup := obj.values[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = renderValue(value)
		if trimmed := bytes.TrimSpace(value); len(trimmed) > 0 && trimmed[0] == '{' {
			if obj.nested == nil {
				obj.nested = make(map[string]json.RawMessage)
			}
			obj.nested[key] = trimmed
		} else {
			delete(obj.nested, key)
		}
	}
	if _, err := expectDelim(dec, '}'); err != nil {
		return obj, err
	}
	return obj, nil
}

// transposeColumns turns {"col": {"0": v, "1": v}, ...} into one object per
// row index. It reports false unless every member is an object keyed by
// integer row indices.
func transposeColumns(obj orderedObject) ([]orderedObject, bool) {
	if len(obj.keys) == 0 || len(obj.nested) != len(obj.keys) {
		return nil, false
	}

	columns := make(map[string]orderedObject, len(obj.keys))
	var index []string
	seen := make(map[string]struct{})
	for _, key := range obj.keys {
		dec := json.NewDecoder(bytes.NewReader(obj.nested[key]))
		dec.UseNumber()
		if _, err := expectDelim(dec, '{'); err != nil {
			return nil, false
		}
		column, err := readObject(dec)
		if err != nil {
			return nil, false
		}
		for _, rowKey := range column.keys {
			if _, err := strconv.Atoi(rowKey); err != nil {
				return nil, false
			}
			if _, ok := seen[rowKey]; !ok {
				seen[rowKey] = struct{}{}
				index = append(index, rowKey)
			}
		}
		columns[key] = column
	}
	if len(index) == 0 {
		return nil, false
	}

	sort.SliceStable(index, func(i, j int) bool {
		a, _ := strconv.Atoi(index[i])
		b, _ := strconv.Atoi(index[j])
		return a < b
	})

	rows := make([]orderedObject, len(index))
	for i, rowKey := range index {
		row := orderedObject{keys: obj.keys, values: make(map[string]string, len(obj.keys))}
		for _, key := range obj.keys {
			row.values[key] = columns[key].values[rowKey]
		}
		rows[i] = row
	}
	return rows, true
}

func expectDelim(dec *json.Decoder, want json.Delim) (json.Token, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != want {
		return nil, fmt.Errorf("expected %q, got %v", want, tok)
	}
	return tok, nil
}

// renderValue turns a JSON value into a preview cell: strings unquoted, null
// empty, everything else compact JSON.
func renderValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

func fitRow(record []string, width int) []string {
	if len(record) == width {
		return record
	}
	row := make([]string, width)
	copy(row, record)
	return row
}
