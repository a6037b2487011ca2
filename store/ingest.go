package store

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"annotator/models"
)

// IngestExternalTable Update the table of the given kind from an external file.
//
// A missing backing file is created from the supplied table. A supplied table
// with a different column set, or without the id column, replaces the table.
// Otherwise both are outer joined on the id column, supplied values winning
// over stored ones wherever they are not empty.
func (s *AnnotationStore) IngestExternalTable(path string, kind string) Result {
	k, ok := models.ParseKind(kind)
	if !ok {
		err := fmt.Errorf("%w: got %q", ErrUnknownKind, kind)
		log.Warn(fmt.Sprintf("Error updating CSV data: %s", err.Error()))
		return failure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ingest(path, k); err != nil {
		log.WithFields(log.Fields{
			"kind": k,
			"path": path,
		}).Warn(fmt.Sprintf("Error updating CSV data: %s", err.Error()))
		return failure(err)
	}
	return success()
}

func (s *AnnotationStore) ingest(path string, kind models.Kind) error {
	exists, err := s.files.Exists(path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: CSV file at %s", ErrFileNotFound, path)
	}
	header, records, err := s.files.ReadTable(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if len(header) == 0 {
		return fmt.Errorf("%w: %s has no header row", ErrInvalidDescriptor, path)
	}
	supplied := newTable(kind, header, records)

	target := s.paths.For(kind)
	targetExists, err := s.files.Exists(target)
	if err != nil {
		return err
	}
	if !targetExists {
		if err := s.replace(kind, supplied); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("New CSV file created in database at %s", target))
		return nil
	}

	existingHeader, existingRecords, err := s.files.ReadTable(target)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", target, err)
	}
	existing := newTable(kind, existingHeader, existingRecords)

	if !sameColumns(existing, supplied) {
		if err := s.replace(kind, supplied); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("CSV at %s replaced with new data (different column structure)", target))
		return nil
	}
	if !supplied.hasColumn(kind.IDColumn()) {
		if err := s.replace(kind, supplied); err != nil {
			return err
		}
		log.Info(fmt.Sprintf("CSV at %s replaced with new data (no matching ID column found)", target))
		return nil
	}

	if err := s.replace(kind, mergeTables(existing, supplied)); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("CSV at %s updated successfully with merged data", target))
	return nil
}

// replace Write t as the backing file of kind, then make it the in-memory table
func (s *AnnotationStore) replace(kind models.Kind, t *Table) error {
	path := s.paths.For(kind)
	if err := s.files.WriteTable(path, t.columns, t.records()); err != nil {
		return fmt.Errorf("cannot save %s table to %s: %w", kind, path, err)
	}
	s.tables[kind] = t
	return nil
}

func sameColumns(a *Table, b *Table) bool {
	as, bs := a.columnSet(), b.columnSet()
	if len(as) != len(bs) {
		return false
	}
	for c := range as {
		if !bs[c] {
			return false
		}
	}
	return true
}

// mergeTables Outer join two tables with the same columns on their id column.
// Keys come out in lexicographic order. An id present several times on either
// side yields one row per pair of matches. For every other column the supplied
// value is kept unless empty, in which case the existing one fills in.
func mergeTables(existing *Table, supplied *Table) *Table {
	id := existing.idColumn()
	existingByID := groupByID(existing)
	suppliedByID := groupByID(supplied)

	keys := make([]string, 0, len(existingByID)+len(suppliedByID))
	for key := range existingByID {
		keys = append(keys, key)
	}
	for key := range suppliedByID {
		if _, ok := existingByID[key]; !ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	merged := &Table{kind: existing.kind, columns: existing.Columns()}
	for _, key := range keys {
		olds, news := existingByID[key], suppliedByID[key]
		switch {
		case len(news) == 0:
			for _, row := range olds {
				merged.rows = append(merged.rows, row.clone())
			}
		case len(olds) == 0:
			for _, row := range news {
				merged.rows = append(merged.rows, row.clone())
			}
		default:
			for _, old := range olds {
				for _, row := range news {
					out := row.clone()
					for _, column := range merged.columns {
						if column != id && out[column] == "" {
							out[column] = old[column]
						}
					}
					merged.rows = append(merged.rows, out)
				}
			}
		}
	}
	return merged
}

func groupByID(t *Table) map[string][]Row {
	column := t.idColumn()
	groups := make(map[string][]Row)
	for _, row := range t.rows {
		groups[row[column]] = append(groups[row[column]], row)
	}
	return groups
}
