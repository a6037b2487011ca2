package utils

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Config Configuration of the annotation server, read from a YAML file.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	// Database Backing CSV file of each table
	Database struct {
		Images  string `yaml:"images"`
		Circle  string `yaml:"circle"`
		Box     string `yaml:"box"`
		Polygon string `yaml:"polygon"`
	} `yaml:"database"`

	Categories struct {
		Root string `yaml:"root"`
	} `yaml:"categories"`

	Images struct {
		Root            string `yaml:"root"`
		ProbeDimensions bool   `yaml:"probe_dimensions"`
	} `yaml:"images"`
}

// DefaultConfig Config used for every key missing from the file
func DefaultConfig() *Config {
	config := &Config{}
	config.Server.Port = "5000"
	config.Database.Images = "./db/database/imageInfo.csv"
	config.Database.Circle = "./db/database/circleRegionInfo.csv"
	config.Database.Box = "./db/database/boxRegionInfo.csv"
	config.Database.Polygon = "./db/database/polygonInfo.csv"
	config.Categories.Root = "./db/categories"
	config.Images.Root = "."
	config.Images.ProbeDimensions = true
	return config
}

// NewConfig Read the YAML config at configPath on top of DefaultConfig
func NewConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cannot decode config %s: %w", configPath, err)
	}
	return config, nil
}

// ValidateConfigPath Make sure the path exists and is a regular file
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a normal file", path)
	}
	return nil
}

// ParseFlags Parse the command line, returning the config path and whether debug mode is on
func ParseFlags() (string, bool, error) {
	var configPath string
	var debugMode bool

	flag.StringVar(&configPath, "config", "./config.yml", "path to config file")
	flag.BoolVar(&debugMode, "debug", false, "enable debug mode")
	flag.Parse()

	if err := ValidateConfigPath(configPath); err != nil {
		return "", false, err
	}
	return configPath, debugMode, nil
}
