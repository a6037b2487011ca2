package store

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"annotator/models"
	"annotator/utils"
)

// CategoryFolderManager keeps one asset folder per class label.
// Implementations log their own failures.
type CategoryFolderManager interface {
	AddImageToFolder(className string, imageName string, imageSrc string)
	RemoveImageFromFolder(className string, imageName string)
	CreateCategories(labels []string)
}

// Paths Backing file of each table
type Paths struct {
	Images  string
	Circle  string
	Box     string
	Polygon string
}

// For Return the backing file of a table kind
func (p Paths) For(kind models.Kind) string {
	switch kind {
	case models.KindImage:
		return p.Images
	case models.KindCircle:
		return p.Circle
	case models.KindBox:
		return p.Box
	case models.KindPolygon:
		return p.Polygon
	}
	return ""
}

// Options configure an AnnotationStore. Only Paths is required.
type Options struct {
	Paths   Paths
	Files   FileStore
	Folders CategoryFolderManager
	// NewUID Return the id unchanged, or a fresh one when it is empty
	NewUID func(id string) string
	// Probe Return height and width of an image source, nil disables probing
	Probe func(src string) (int, int, error)
}

// AnnotationStore owns the images table and the three region tables.
// Public operations are serialized: the store is meant to have one writer.
type AnnotationStore struct {
	mu sync.RWMutex

	paths   Paths
	files   FileStore
	folders CategoryFolderManager
	newUID  func(id string) string
	probe   func(src string) (int, int, error)

	tables map[models.Kind]*Table
}

type nopFolders struct{}

func (nopFolders) AddImageToFolder(string, string, string) {}
func (nopFolders) RemoveImageFromFolder(string, string)    {}
func (nopFolders) CreateCategories([]string)               {}

// New Create the missing backing files, then load the four tables
func New(opts Options) (*AnnotationStore, error) {
	s := &AnnotationStore{
		paths:   opts.Paths,
		files:   opts.Files,
		folders: opts.Folders,
		newUID:  opts.NewUID,
		probe:   opts.Probe,
		tables:  make(map[models.Kind]*Table, len(models.Kinds)),
	}
	if s.files == nil {
		s.files = DiskFileStore{}
	}
	if s.folders == nil {
		s.folders = nopFolders{}
	}
	if s.newUID == nil {
		s.newUID = utils.GenerateUID
	}

	for _, kind := range models.Kinds {
		if s.paths.For(kind) == "" {
			return nil, fmt.Errorf("no backing file configured for %s table", kind)
		}
		if err := s.bootstrap(kind); err != nil {
			return nil, err
		}
	}
	for _, kind := range models.Kinds {
		if err := s.load(kind); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// bootstrap Write a header-only backing file when there is none
func (s *AnnotationStore) bootstrap(kind models.Kind) error {
	path := s.paths.For(kind)
	exists, err := s.files.Exists(path)
	if err != nil {
		return fmt.Errorf("cannot check %s table at %s: %w", kind, path, err)
	}
	if exists {
		return nil
	}
	log.Info(fmt.Sprintf("Creating empty %s table at %s", kind, path))
	if err := s.files.WriteTable(path, kind.Columns(), nil); err != nil {
		return fmt.Errorf("cannot create %s table at %s: %w", kind, path, err)
	}
	return nil
}

func (s *AnnotationStore) load(kind models.Kind) error {
	path := s.paths.For(kind)
	header, records, err := s.files.ReadTable(path)
	if err != nil {
		return fmt.Errorf("cannot load %s table from %s: %w", kind, path, err)
	}
	s.tables[kind] = newTable(kind, header, records)
	log.Debug(fmt.Sprintf("Loaded %d rows into %s table", len(records), kind))
	return nil
}

// persist Rewrite the backing files of the given tables, stopping at the first failure
func (s *AnnotationStore) persist(kinds ...models.Kind) error {
	for _, kind := range kinds {
		t := s.tables[kind]
		path := s.paths.For(kind)
		if err := s.files.WriteTable(path, t.columns, t.records()); err != nil {
			return fmt.Errorf("cannot save %s table to %s: %w", kind, path, err)
		}
	}
	return nil
}

func (s *AnnotationStore) regionTables() []*Table {
	return []*Table{
		s.tables[models.KindCircle],
		s.tables[models.KindBox],
		s.tables[models.KindPolygon],
	}
}
