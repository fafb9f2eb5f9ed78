package dataset

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	ColumnText    = "text"
	ColumnEmotion = "emotion"
)

// synonym declares which raw header names may stand in for a logical column.
// Order matters: the first alias present wins.
type synonym struct {
	canonical string
	aliases   []string
}

var columnSynonyms = []synonym{
	{canonical: ColumnText, aliases: []string{"sentence"}},
	{canonical: ColumnEmotion, aliases: []string{"label", "emotionlabel"}},
}

// normalizeHeader applies NFKC, strips a UTF-8 BOM and surrounding space and
// lowercases the cell.
func normalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	cell = norm.NFKC.String(cell)
	return strings.ToLower(strings.TrimSpace(cell))
}

// normalizeColumns returns normalized header names with synonyms renamed to
// their canonical field. An existing canonical column is never shadowed, and
// aliases beyond the first match are left as they are.
func normalizeColumns(header []string) []string {
	columns := make([]string, len(header))
	for i, cell := range header {
		columns[i] = normalizeHeader(cell)
	}

	for _, syn := range columnSynonyms {
		if indexOf(columns, syn.canonical) >= 0 {
			continue
		}
		for _, alias := range syn.aliases {
			if idx := indexOf(columns, alias); idx >= 0 {
				columns[idx] = syn.canonical
				break
			}
		}
	}
	return columns
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
