package store

import "annotator/models"

// Row maps column name to cell text. An empty cell has no value.
type Row map[string]string

func (r Row) clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Field is one provided cell of a row being upserted.
type Field struct {
	Column string
	Value  string
}

// Table is the in-memory copy of one backing file.
// Columns keep the file order. Columns never declared by the schema may appear
// after an external table replaced the backing file.
type Table struct {
	kind    models.Kind
	columns []string
	rows    []Row
}

// newTable Build a table from a header and data rows. Short rows are padded with empty cells.
func newTable(kind models.Kind, header []string, records [][]string) *Table {
	if len(header) == 0 {
		header = kind.Columns()
	}
	t := &Table{kind: kind}
	for _, column := range header {
		t.ensureColumn(column)
	}
	t.rows = make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Columns Return a copy of the header
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len Return the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows Return clones of all rows
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.rows))
	for i, row := range t.rows {
		rows[i] = row.clone()
	}
	return rows
}

func (t *Table) idColumn() string {
	return t.kind.IDColumn()
}

func (t *Table) hasColumn(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

func (t *Table) ensureColumn(column string) {
	if !t.hasColumn(column) {
		t.columns = append(t.columns, column)
	}
}

func (t *Table) columnSet() map[string]bool {
	set := make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		set[c] = true
	}
	return set
}

// index Return the position of the first row with the id, or -1
func (t *Table) index(id string) int {
	column := t.idColumn()
	for i, row := range t.rows {
		if row[column] == id {
			return i
		}
	}
	return -1
}

func (t *Table) set(i int, fields []Field) {
	for _, f := range fields {
		t.ensureColumn(f.Column)
		t.rows[i][f.Column] = f.Value
	}
}

func (t *Table) append(fields []Field) {
	row := make(Row, len(t.columns))
	for _, f := range fields {
		t.ensureColumn(f.Column)
		row[f.Column] = f.Value
	}
	t.rows = append(t.rows, row)
}

// filter Keep the rows for which keep is true, returning how many were dropped
func (t *Table) filter(keep func(Row) bool) int {
	kept := t.rows[:0]
	for _, row := range t.rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	dropped := len(t.rows) - len(kept)
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
	return dropped
}

func (t *Table) truncate() {
	t.rows = []Row{}
}

// records Return the rows in header order, ready to be written
func (t *Table) records() [][]string {
	records := make([][]string, len(t.rows))
	for i, row := range t.rows {
		record := make([]string, len(t.columns))
		for j, column := range t.columns {
			record[j] = row[column]
		}
		records[i] = record
	}
	return records
}
