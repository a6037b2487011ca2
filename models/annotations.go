package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Region types understood by the store. Anything else is ignored.
const (
	RegionCircle  = "circle"
	RegionBox     = "box"
	RegionPolygon = "polygon"
)

// RegionRecord holds the columns shared by the three region tables.
type RegionRecord struct {
	ID       string `json:"region-id"`
	ImageSrc string `json:"image-src"`
	Class    string `json:"class"`
	Comment  string `json:"comment"`
	Tags     Labels `json:"tags"`
}

type CircleRegion struct {
	RegionRecord
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
	RW float64 `json:"rw"`
	RH float64 `json:"rh"`
}

type BoxRegion struct {
	RegionRecord
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type PolygonRegion struct {
	RegionRecord
	Points []Point `json:"points"`
}

// ImageRegions groups every stored region of one image by shape.
type ImageRegions struct {
	Circles  []CircleRegion  `json:"circles"`
	Boxes    []BoxRegion     `json:"boxes"`
	Polygons []PolygonRegion `json:"polygons"`
}

// RegionDescriptor is one region of an ImageDescriptor.
type RegionDescriptor struct {
	ID      Text              `json:"id"`
	Type    string            `json:"type"`
	Class   Text              `json:"cls"`
	Comment Text              `json:"comment"`
	Tags    Labels            `json:"tags"`
	Coords  map[string]Number `json:"coords"`
	Points  []Point           `json:"points"`
}

// Point is a polygon vertex, sent as [x, y].
type Point struct {
	X float64
	Y float64
}

func (p *Point) UnmarshalJSON(b []byte) error {
	var pair []Number
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("point must be an [x, y] pair: %w", err)
	}
	if len(pair) != 2 || !pair[0].Valid || !pair[1].Valid {
		return fmt.Errorf("point must be an [x, y] pair, got %d values", len(pair))
	}
	p.X, p.Y = pair[0].Value, pair[1].Value
	return nil
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// String Return the "x-y" form of the point
func (p Point) String() string {
	return FormatNumber(p.X) + "-" + FormatNumber(p.Y)
}

// FormatPoints Serialize points as "x1-y1;x2-y2;..."
func FormatPoints(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, LabelSeparator)
}

// ParsePoints Parse the "x1-y1;x2-y2;..." form written by FormatPoints.
// Negative coordinates are supported: "-1--2" is (-1, -2).
func ParsePoints(cell string) ([]Point, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}
	parts := strings.Split(cell, LabelSeparator)
	points := make([]Point, 0, len(parts))
	for _, part := range parts {
		split := pairSeparator(part)
		if split < 0 {
			return nil, fmt.Errorf("invalid point %q", part)
		}
		x, err := ParseNumber(part[:split])
		if err != nil || !x.Valid {
			return nil, fmt.Errorf("invalid point %q", part)
		}
		y, err := ParseNumber(part[split+1:])
		if err != nil || !y.Valid {
			return nil, fmt.Errorf("invalid point %q", part)
		}
		points = append(points, Point{X: x.Value, Y: y.Value})
	}
	return points, nil
}

// pairSeparator Find the "-" between x and y, skipping a leading sign and exponent signs.
func pairSeparator(s string) int {
	for i := 1; i < len(s); i++ {
		if s[i] != '-' {
			continue
		}
		if prev := s[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		return i
	}
	return -1
}
