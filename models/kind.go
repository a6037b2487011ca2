package models

import "strings"

// Kind names one of the four tables.
type Kind string

const (
	KindImage   Kind = "image"
	KindCircle  Kind = "circle"
	KindBox     Kind = "box"
	KindPolygon Kind = "polygon"
)

// Id columns
const (
	ImageIDColumn  = "image-src"
	RegionIDColumn = "region-id"
)

// Kinds in persistence order
var Kinds = []Kind{KindImage, KindCircle, KindBox, KindPolygon}

// ParseKind Parse a kind, case insensitive
func ParseKind(s string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Kinds {
		if k == kind {
			return k, true
		}
	}
	return "", false
}

// IDColumn Return the key column of the table
func (k Kind) IDColumn() string {
	if k == KindImage {
		return ImageIDColumn
	}
	return RegionIDColumn
}

// Columns Return the declared column schema of the table
func (k Kind) Columns() []string {
	common := []string{"region-id", "image-src", "class", "comment", "tags"}
	switch k {
	case KindImage:
		return []string{
			"image-name",
			"selected-classes",
			"comment",
			"image-original-height",
			"image-original-width",
			"image-src",
			"processed",
		}
	case KindCircle:
		return append(common, "rx", "ry", "rw", "rh")
	case KindBox:
		return append(common, "x", "y", "w", "h")
	case KindPolygon:
		return append(common, "points")
	}
	return nil
}
