package categories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const manifestExtension = ".yaml"

var errInvalidName = errors.New("invalid folder or file name")

// Manifest records which image was filed under a class folder.
type Manifest struct {
	Name  string    `yaml:"name"`
	Src   string    `yaml:"src"`
	Class string    `yaml:"class"`
	Added time.Time `yaml:"added"`
}

// Folders keeps one directory per class label under Root, holding one YAML
// manifest per image filed under that class. Every operation is idempotent and
// failures are only logged.
type Folders struct {
	Root string
}

// NewFolders Create the manager and its root directory
func NewFolders(root string) (*Folders, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create category root %s: %w", root, err)
	}
	return &Folders{Root: root}, nil
}

// safeName Reject names that would escape their parent directory
func safeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", errInvalidName, name)
	}
	return name, nil
}

func (f *Folders) folder(className string) (string, error) {
	name, err := safeName(className)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.Root, name), nil
}

func (f *Folders) manifestPath(className string, imageName string) (string, error) {
	dir, err := f.folder(className)
	if err != nil {
		return "", err
	}
	name, err := safeName(imageName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+manifestExtension), nil
}

// CreateCategories Create a folder for every label
func (f *Folders) CreateCategories(labels []string) {
	for _, label := range labels {
		dir, err := f.folder(label)
		if err != nil {
			log.Warn(fmt.Sprintf("Skipping category %q: %s", label, err.Error()))
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn(fmt.Sprintf("Cannot create category folder %s: %s", dir, err.Error()))
			continue
		}
		log.Debug(fmt.Sprintf("Category folder %s ready", dir))
	}
}

// AddImageToFolder File an image under a class, creating the class folder if needed
func (f *Folders) AddImageToFolder(className string, imageName string, imageSrc string) {
	path, err := f.manifestPath(className, imageName)
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot add image %q to category %q: %s", imageName, className, err.Error()))
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn(fmt.Sprintf("Cannot create category folder %s: %s", filepath.Dir(path), err.Error()))
		return
	}
	data, err := yaml.Marshal(Manifest{
		Name:  imageName,
		Src:   imageSrc,
		Class: className,
		Added: time.Now().UTC(),
	})
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot encode manifest for %s: %s", path, err.Error()))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn(fmt.Sprintf("Cannot write manifest %s: %s", path, err.Error()))
		return
	}
	log.Debug(fmt.Sprintf("Added image %s to category %s", imageName, className))
}

// RemoveImageFromFolder Remove an image from a class folder. A missing entry is not an error.
func (f *Folders) RemoveImageFromFolder(className string, imageName string) {
	path, err := f.manifestPath(className, imageName)
	if err != nil {
		log.Warn(fmt.Sprintf("Cannot remove image %q from category %q: %s", imageName, className, err.Error()))
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn(fmt.Sprintf("Cannot remove manifest %s: %s", path, err.Error()))
		return
	}
	log.Debug(fmt.Sprintf("Removed image %s from category %s", imageName, className))
}

// Images Return the manifests filed under a class, in directory order
func (f *Folders) Images(className string) ([]Manifest, error) {
	dir, err := f.folder(className)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var manifests []Manifest
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != manifestExtension {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("cannot decode %s: %w", entry.Name(), err)
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
