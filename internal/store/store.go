// Package store loads the classification table from disk. Two formats are
// accepted: a CSV whose header row names the categories and whose cells list
// their keywords, and a YAML document with a "categories" list.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// DefaultClassificationFile is looked up when no file is configured.
const DefaultClassificationFile = "classification.csv"

// CategorySource yields the ordered category configs of a classification table.
type CategorySource interface {
	LoadCategories() ([]models.CategoryConfig, error)
}

// CategoryStore reads and writes classification files.
type CategoryStore struct {
	CategoriesFile string
	logger         logging.Logger
}

// NewCategoryStore creates a store for the given classification file.
func NewCategoryStore(categoriesFile string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategoryStore{CategoriesFile: categoriesFile, logger: logger}
}

// FindConfigFile looks for filename as given, then under ./config and
// $HOME/.config/budget-csv.
func (s *CategoryStore) FindConfigFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if fileutils.FileExists(filename) {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "budget-csv", filename))
	}

	for _, location := range locations {
		if fileutils.FileExists(location) {
			return location, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadCategories reads the category configs in declaration order. A missing
// or unreadable file is an input error; an empty file yields no categories.
func (s *CategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	filename := s.CategoriesFile
	if filename == "" {
		filename = DefaultClassificationFile
	}

	path, err := s.FindConfigFile(filename)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       filename,
			ExpectedFormat: "classification CSV or YAML",
			Msg:            "file not found",
			Err:            err,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "classification CSV or YAML",
			Msg:            "cannot read file",
			Err:            err,
		}
	}

	var configs []models.CategoryConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		configs, err = parseYAML(data)
	default:
		configs, err = parseCSV(data)
	}
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "classification CSV or YAML",
			Msg:            "cannot parse classification",
			Err:            err,
		}
	}

	s.logger.Debug("Loaded classification table",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(configs)})
	return configs, nil
}

// LoadTable loads the categories and builds the classification table.
func (s *CategoryStore) LoadTable() (*categorizer.Table, error) {
	return LoadTable(s)
}

// LoadTable builds a classification table from any CategorySource.
func LoadTable(src CategorySource) (*categorizer.Table, error) {
	configs, err := src.LoadCategories()
	if err != nil {
		return nil, err
	}
	return categorizer.NewTable(configs)
}

// SaveCategories writes configs as YAML to path.
func (s *CategoryStore) SaveCategories(path string, configs []models.CategoryConfig) error {
	data, err := yaml.Marshal(models.CategoriesConfig{Categories: configs})
	if err != nil {
		return fmt.Errorf("error marshaling categories: %w", err)
	}
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionReportFile); err != nil {
		return fmt.Errorf("error writing categories: %w", err)
	}

	s.logger.Info("Saved classification table",
		logging.Field{Key: logging.FieldFile, Value: path},
		logging.Field{Key: logging.FieldCount, Value: len(configs)})
	return nil
}

// parseCSV reads the column-per-category layout. Blank cells are skipped and
// column order is kept. Columns with a blank header are ignored.
func parseCSV(data []byte) ([]models.CategoryConfig, error) {
	reader := gocsv.LazyCSVReader(bytes.NewReader(data))
	if r, ok := reader.(*csv.Reader); ok {
		r.FieldsPerRecord = -1
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	configs := make([]models.CategoryConfig, 0, len(header))
	columns := make([]int, 0, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}
		configs = append(configs, models.CategoryConfig{Name: name})
		columns = append(columns, i)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		for c, col := range columns {
			if col >= len(record) {
				continue
			}
			if kw := strings.TrimSpace(record[col]); kw != "" {
				configs[c].Keywords = append(configs[c].Keywords, kw)
			}
		}
	}

	return configs, nil
}

func parseYAML(data []byte) ([]models.CategoryConfig, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	// A present categories key is authoritative, even when its list is empty.
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err == nil {
		if node, ok := doc["categories"]; ok {
			var categories []models.CategoryConfig
			if err := node.Decode(&categories); err != nil {
				return nil, err
			}
			return categories, nil
		}
	}

	// A bare list without the top-level key
	var list []models.CategoryConfig
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}
