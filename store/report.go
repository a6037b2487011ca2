package store

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"annotator/models"
)

// ClassDistribution Count the regions of each class over the three region tables.
// Regions without a class are not counted.
func (s *AnnotationStore) ClassDistribution() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, t := range s.regionTables() {
		for _, row := range t.rows {
			if class := row[columnClass]; class != "" {
				counts[class]++
			}
		}
	}
	return counts
}

// Clear Drop every row of the four tables and rewrite their files header-only.
// There is no undo.
func (s *AnnotationStore) Clear() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range models.Kinds {
		s.tables[kind].truncate()
	}
	if err := s.persist(models.Kinds...); err != nil {
		log.Warn(fmt.Sprintf("Error occurred clearing the database: %s", err.Error()))
		return failure(err)
	}
	log.Info("Tables cleared and CSV files updated.")
	return success()
}

// CreateCategories Ask the folder manager for one folder per label
func (s *AnnotationStore) CreateCategories(labels []string) {
	if labels == nil {
		return
	}
	s.folders.CreateCategories(models.NewLabels(labels...))
}

// Images Return every stored image row
func (s *AnnotationStore) Images() ([]models.ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tables[models.KindImage]
	images := make([]models.ImageRecord, 0, t.Len())
	for _, row := range t.rows {
		image, err := imageRecordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", row[columnImageSrc], err)
		}
		images = append(images, image)
	}
	return images, nil
}

// Regions Return the regions stored for an image, grouped by shape
func (s *AnnotationStore) Regions(src string) (models.ImageRegions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	regions := models.ImageRegions{
		Circles:  []models.CircleRegion{},
		Boxes:    []models.BoxRegion{},
		Polygons: []models.PolygonRegion{},
	}
	for _, row := range s.tables[models.KindCircle].rows {
		if row[columnImageSrc] != src {
			continue
		}
		circle, err := circleFromRow(row)
		if err != nil {
			return regions, fmt.Errorf("circle region %s: %w", row[columnRegionID], err)
		}
		regions.Circles = append(regions.Circles, circle)
	}
	for _, row := range s.tables[models.KindBox].rows {
		if row[columnImageSrc] != src {
			continue
		}
		box, err := boxFromRow(row)
		if err != nil {
			return regions, fmt.Errorf("box region %s: %w", row[columnRegionID], err)
		}
		regions.Boxes = append(regions.Boxes, box)
	}
	for _, row := range s.tables[models.KindPolygon].rows {
		if row[columnImageSrc] != src {
			continue
		}
		polygon, err := polygonFromRow(row)
		if err != nil {
			return regions, fmt.Errorf("polygon region %s: %w", row[columnRegionID], err)
		}
		regions.Polygons = append(regions.Polygons, polygon)
	}
	return regions, nil
}
