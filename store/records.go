package store

import (
	"fmt"
	"path"
	"strings"

	"annotator/models"
)

const (
	columnImageName = "image-name"
	columnClasses   = "selected-classes"
	columnComment   = "comment"
	columnHeight    = "image-original-height"
	columnWidth     = "image-original-width"
	columnProcessed = "processed"
	columnImageSrc  = "image-src"
	columnRegionID  = "region-id"
	columnClass     = "class"
	columnTags      = "tags"
	columnPoints    = "points"
)

var shapeCoordinates = map[models.Kind][]string{
	models.KindCircle: {"rx", "ry", "rw", "rh"},
	models.KindBox:    {"x", "y", "w", "h"},
}

// imageChange is a normalized image descriptor. Invalid Text and Number
// values and nil classes were not sent and leave the stored cell untouched.
type imageChange struct {
	src       string
	name      models.Text
	comment   models.Text
	classes   models.Labels
	height    models.Number
	width     models.Number
	processed int
}

func (c imageChange) fields() []Field {
	var fields []Field
	if c.name.Valid {
		fields = append(fields, Field{columnImageName, c.name.Value})
	}
	if c.classes != nil {
		fields = append(fields, Field{columnClasses, c.classes.String()})
	}
	if c.comment.Valid {
		fields = append(fields, Field{columnComment, c.comment.Value})
	}
	if c.height.Valid {
		fields = append(fields, Field{columnHeight, c.height.String()})
	}
	if c.width.Valid {
		fields = append(fields, Field{columnWidth, c.width.String()})
	}
	fields = append(fields,
		Field{columnImageSrc, c.src},
		Field{columnProcessed, fmt.Sprint(c.processed)},
	)
	return fields
}

// regionChange is a normalized region descriptor routed to one shape table.
// An empty kind marks an unsupported region type.
type regionChange struct {
	kind   models.Kind
	id     string
	rtype  string
	fields []Field
}

// newImageChange Normalize an image descriptor, the only place where
// descriptor values are interpreted.
func newImageChange(desc models.ImageDescriptor) (imageChange, error) {
	src := strings.TrimSpace(desc.Src.Value)
	if !desc.Src.Valid || src == "" {
		return imageChange{}, fmt.Errorf("%w: missing image src", ErrInvalidDescriptor)
	}
	c := imageChange{
		src:       src,
		name:      desc.Name,
		comment:   desc.Comment,
		classes:   desc.Classes,
		processed: 1,
	}
	if desc.PixelSize != nil {
		c.height = desc.PixelSize.H
		c.width = desc.PixelSize.W
	}
	if desc.Processed != nil && desc.Processed.Valid && desc.Processed.Value == 0 {
		c.processed = 0
	}
	return c, nil
}

// defaultImageName Name used for a new image row sent without one
func defaultImageName(src string) string {
	return path.Base(strings.ReplaceAll(src, "\\", "/"))
}

func newRegionChange(src string, id string, region models.RegionDescriptor) (regionChange, error) {
	c := regionChange{id: id, rtype: region.Type}
	switch strings.ToLower(region.Type) {
	case models.RegionCircle:
		c.kind = models.KindCircle
	case models.RegionBox:
		c.kind = models.KindBox
	case models.RegionPolygon:
		c.kind = models.KindPolygon
	default:
		return c, nil
	}

	tags := region.Tags
	if tags == nil {
		tags = models.Labels{}
	}
	c.fields = []Field{
		{columnRegionID, id},
		{columnImageSrc, src},
		{columnClass, region.Class.Value},
		{columnComment, region.Comment.Value},
		{columnTags, tags.String()},
	}

	if c.kind == models.KindPolygon {
		if region.Points == nil {
			return c, fmt.Errorf("%w: polygon region %s has no points", ErrInvalidDescriptor, id)
		}
		c.fields = append(c.fields, Field{columnPoints, models.FormatPoints(region.Points)})
		return c, nil
	}

	for _, key := range shapeCoordinates[c.kind] {
		value, ok := region.Coords[key]
		if !ok || !value.Valid {
			return c, fmt.Errorf("%w: %s region %s is missing coordinate %s", ErrInvalidDescriptor, c.kind, id, key)
		}
		c.fields = append(c.fields, Field{key, value.String()})
	}
	return c, nil
}

func parseFloat(row Row, column string) (float64, error) {
	n, err := models.ParseNumber(row[column])
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", column, err)
	}
	return n.Value, nil
}

func imageRecordFromRow(row Row) (models.ImageRecord, error) {
	rec := models.ImageRecord{
		Name:    row[columnImageName],
		Classes: models.ParseLabels(row[columnClasses]),
		Comment: row[columnComment],
		Src:     row[columnImageSrc],
	}
	var err error
	if rec.Height, err = models.ParseNumber(row[columnHeight]); err != nil {
		return rec, err
	}
	if rec.Width, err = models.ParseNumber(row[columnWidth]); err != nil {
		return rec, err
	}
	processed, err := models.ParseNumber(row[columnProcessed])
	if err != nil {
		return rec, err
	}
	if processed.Value != 0 {
		rec.Processed = 1
	}
	return rec, nil
}

func regionRecordFromRow(row Row) models.RegionRecord {
	return models.RegionRecord{
		ID:       row[columnRegionID],
		ImageSrc: row[columnImageSrc],
		Class:    row[columnClass],
		Comment:  row[columnComment],
		Tags:     models.ParseLabels(row[columnTags]),
	}
}

// coordinatesFromRow Parse the shape coordinates of a circle or box row, in declared order
func coordinatesFromRow(kind models.Kind, row Row) ([4]float64, error) {
	var values [4]float64
	for i, key := range shapeCoordinates[kind] {
		v, err := parseFloat(row, key)
		if err != nil {
			return values, err
		}
		values[i] = v
	}
	return values, nil
}

func circleFromRow(row Row) (models.CircleRegion, error) {
	c, err := coordinatesFromRow(models.KindCircle, row)
	if err != nil {
		return models.CircleRegion{}, err
	}
	return models.CircleRegion{RegionRecord: regionRecordFromRow(row), RX: c[0], RY: c[1], RW: c[2], RH: c[3]}, nil
}

func boxFromRow(row Row) (models.BoxRegion, error) {
	c, err := coordinatesFromRow(models.KindBox, row)
	if err != nil {
		return models.BoxRegion{}, err
	}
	return models.BoxRegion{RegionRecord: regionRecordFromRow(row), X: c[0], Y: c[1], W: c[2], H: c[3]}, nil
}

func polygonFromRow(row Row) (models.PolygonRegion, error) {
	points, err := models.ParsePoints(row[columnPoints])
	if err != nil {
		return models.PolygonRegion{}, err
	}
	return models.PolygonRegion{RegionRecord: regionRecordFromRow(row), Points: points}, nil
}
