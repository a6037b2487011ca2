package store

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"annotator/models"
)

// folderEntry identifies the image whose class labels drive the category folders.
type folderEntry struct {
	name   string
	src    string
	labels models.Labels
}

// SubmitSnapshot Store the full annotation state of one image.
// The image row is upserted, stored regions of the image missing from the
// snapshot are purged, the submitted regions are upserted, and the four
// backing files are rewritten.
func (s *AnnotationStore) SubmitSnapshot(desc models.ImageDescriptor) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	image, regions, err := s.normalizeSnapshot(desc)
	if err != nil {
		log.Warn(fmt.Sprintf("Rejecting snapshot for image %q: %s", desc.Src.Value, err.Error()))
		return failure(err)
	}

	s.saveImage(image)

	existing := s.storedRegionIDs(image.src)
	incoming := make(map[string]bool, len(regions))
	for _, region := range regions {
		incoming[region.id] = true
	}
	purge := make(map[string]bool)
	for id := range existing {
		if !incoming[id] {
			purge[id] = true
		}
	}
	if len(purge) > 0 {
		removed := 0
		for _, t := range s.regionTables() {
			removed += t.filter(func(row Row) bool {
				return !purge[row[columnRegionID]]
			})
		}
		log.Debug(fmt.Sprintf("Purged %d regions of image %s", removed, image.src))
	}

	for _, region := range regions {
		s.saveRegion(region)
	}

	if err := s.persist(models.Kinds...); err != nil {
		log.Warn(fmt.Sprintf("Error saving snapshot for image %s: %s", image.src, err.Error()))
		return failure(err)
	}
	log.WithFields(log.Fields{
		"src":     image.src,
		"regions": len(regions),
	}).Info("Saved image snapshot")
	return success()
}

// SubmitImageMetadata Upsert the image row only and rewrite the images file.
// Regions in the descriptor are ignored.
func (s *AnnotationStore) SubmitImageMetadata(desc models.ImageDescriptor) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	image, err := s.normalizeImage(desc)
	if err != nil {
		log.Warn(fmt.Sprintf("Rejecting image data for %q: %s", desc.Src.Value, err.Error()))
		return failure(err)
	}

	s.saveImage(image)

	if err := s.persist(models.KindImage); err != nil {
		log.Warn(fmt.Sprintf("Error saving image data for %s: %s", image.src, err.Error()))
		return failure(err)
	}
	return success()
}

// normalizeSnapshot Validate the whole descriptor before anything is mutated
func (s *AnnotationStore) normalizeSnapshot(desc models.ImageDescriptor) (imageChange, []regionChange, error) {
	image, err := s.normalizeImage(desc)
	if err != nil {
		return imageChange{}, nil, err
	}
	regions := make([]regionChange, 0, len(desc.Regions))
	for i, region := range desc.Regions {
		change, err := newRegionChange(image.src, s.newUID(region.ID.Value), region)
		if err != nil {
			return imageChange{}, nil, fmt.Errorf("region %d: %w", i, err)
		}
		regions = append(regions, change)
	}
	return image, regions, nil
}

func (s *AnnotationStore) normalizeImage(desc models.ImageDescriptor) (imageChange, error) {
	image, err := newImageChange(desc)
	if err != nil {
		return image, err
	}
	if desc.PixelSize == nil && s.probe != nil {
		height, width, err := s.probe(image.src)
		if err != nil {
			log.Debug(fmt.Sprintf("No pixel size for image %s: %s", image.src, err.Error()))
		} else {
			image.height = models.NewNumber(float64(height))
			image.width = models.NewNumber(float64(width))
		}
	}
	return image, nil
}

// storedRegionIDs Return the ids stored for an image across the three region tables
func (s *AnnotationStore) storedRegionIDs(src string) map[string]bool {
	ids := make(map[string]bool)
	for _, t := range s.regionTables() {
		for _, row := range t.rows {
			if row[columnImageSrc] == src {
				ids[row[columnRegionID]] = true
			}
		}
	}
	return ids
}

func (s *AnnotationStore) saveImage(image imageChange) {
	t := s.tables[models.KindImage]
	entry := &folderEntry{name: image.name.Value, src: image.src, labels: image.classes}
	fields := image.fields()
	if t.index(image.src) < 0 && !image.name.Valid {
		entry.name = defaultImageName(image.src)
		fields = append(fields, Field{columnImageName, entry.name})
	}
	s.saveRecord(t, image.src, fields, entry)
}

// saveRegion Route a region to its shape table. A region moving to another
// shape is dropped from the tables it previously lived in.
func (s *AnnotationStore) saveRegion(region regionChange) {
	if region.kind == "" {
		log.Warn(fmt.Sprintf("This region type is not defined yet: %q (region %s)", region.rtype, region.id))
		return
	}
	for _, kind := range []models.Kind{models.KindCircle, models.KindBox, models.KindPolygon} {
		if kind == region.kind {
			continue
		}
		s.tables[kind].filter(func(row Row) bool {
			return row[columnRegionID] != region.id
		})
	}
	s.saveRecord(s.tables[region.kind], region.id, region.fields, nil)
}

// saveRecord Upsert a row by id. When entry carries labels, the category
// folders follow the difference between the stored and the new labels.
func (s *AnnotationStore) saveRecord(t *Table, id string, fields []Field, entry *folderEntry) {
	i := t.index(id)
	if i >= 0 {
		if entry != nil && entry.labels != nil {
			old := models.ParseLabels(t.rows[i][columnClasses])
			name := entry.name
			if name == "" {
				name = t.rows[i][columnImageName]
			}
			added, removed := entry.labels.Diff(old)
			for _, class := range added {
				s.folders.AddImageToFolder(class, name, entry.src)
			}
			for _, class := range removed {
				s.folders.RemoveImageFromFolder(class, name)
			}
		}
		log.Debug(fmt.Sprintf("Updating %s %s in %s table", t.idColumn(), id, t.kind))
		t.set(i, fields)
		return
	}

	log.Debug(fmt.Sprintf("Adding %s %s to %s table", t.idColumn(), id, t.kind))
	t.append(fields)
	if entry != nil {
		for _, class := range entry.labels {
			s.folders.AddImageToFolder(class, entry.name, entry.src)
		}
	}
}
