package models

// ImageRecord is one row in the images table, keyed by Src.
type ImageRecord struct {
	Name      string `json:"image-name"`
	Classes   Labels `json:"selected-classes"`
	Comment   string `json:"comment"`
	Height    Number `json:"image-original-height"`
	Width     Number `json:"image-original-width"`
	Src       string `json:"image-src"`
	Processed int    `json:"processed"`
}

type PixelSize struct {
	H Number `json:"h"`
	W Number `json:"w"`
}

// ImageDescriptor is the payload sent by the annotation client for one image.
type ImageDescriptor struct {
	Src       Text               `json:"src"`
	Name      Text               `json:"name"`
	Comment   Text               `json:"comment"`
	Classes   Labels             `json:"cls"`
	PixelSize *PixelSize         `json:"pixelSize,omitempty"`
	Processed *Number            `json:"processed,omitempty"`
	Regions   []RegionDescriptor `json:"regions"`
}
