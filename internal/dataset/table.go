package dataset

import "sort"

// Dataset is one loaded file, kept for preview only.
type Dataset struct {
	Name    string     `json:"name"`
	Path    string     `json:"path"`
	Format  string     `json:"format"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len 返回数据行数。
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Head returns at most n rows. Non-positive n returns no rows.
func (d *Dataset) Head(n int) [][]string {
	if n <= 0 {
		return [][]string{}
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// Column returns the index of a normalized column name, or -1.
func (d *Dataset) Column(name string) int {
	return indexOf(d.Columns, name)
}

// HasEmotion reports whether the dataset carries an emotion column.
func (d *Dataset) HasEmotion() bool {
	return d.Column(ColumnEmotion) >= 0
}

// Text returns the text cell of row i.
func (d *Dataset) Text(i int) string {
	return d.cell(i, ColumnText)
}

// Emotion returns the emotion cell of row i, or "" when there is none.
func (d *Dataset) Emotion(i int) string {
	return d.cell(i, ColumnEmotion)
}

// LabelCount is how often one emotion label occurs in a dataset.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelCounts tallies the emotion column, most frequent first.
func (d *Dataset) LabelCounts() []LabelCount {
	if !d.HasEmotion() {
		return nil
	}

	counts := make(map[string]int)
	for i := range d.Rows {
		if label := d.Emotion(i); label != "" {
			counts[label]++
		}
	}

	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (d *Dataset) cell(i int, column string) string {
	col := d.Column(column)
	if col < 0 || i < 0 || i >= len(d.Rows) || col >= len(d.Rows[i]) {
		return ""
	}
	return d.Rows[i][col]
}
