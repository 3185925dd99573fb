package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"college-predictor/internal/models"
	"college-predictor/internal/utils"
)

// ErrSourceNotFound is returned when the cutoff source does not exist.
var ErrSourceNotFound = errors.New("cutoff source not found")

// FileLoader reads cutoffs from a local CSV file.
type FileLoader struct {
	Path string
}

// NewFileLoader creates a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{Path: path}
}

// Load reads and parses the file, CSV or XLSX by extension.
func (l *FileLoader) Load(_ context.Context) ([]models.Record, error) {
	content, err := os.ReadFile(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Path, err)
	}
	return utils.ParseCutoffFile(l.Path, content)
}

// Describe implements Loader.
func (l *FileLoader) Describe() string {
	return "file://" + l.Path
}

// ObjectFetcher downloads an object body by key.
type ObjectFetcher interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	FileExists(ctx context.Context, key string) (bool, error)
	Bucket() string
}

// S3Loader reads cutoffs from a CSV or XLSX object.
type S3Loader struct {
	fetcher ObjectFetcher
	key     string
}

// NewS3Loader creates a loader for key in the fetcher's bucket.
func NewS3Loader(fetcher ObjectFetcher, key string) *S3Loader {
	return &S3Loader{fetcher: fetcher, key: key}
}

// Load downloads and parses the object.
func (l *S3Loader) Load(ctx context.Context) ([]models.Record, error) {
	exists, err := l.fetcher.FileExists(ctx, l.key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, l.Describe())
	}

	content, err := l.fetcher.DownloadFile(ctx, l.key)
	if err != nil {
		return nil, err
	}
	return utils.ParseCutoffFile(l.key, content)
}

// Describe implements Loader.
func (l *S3Loader) Describe() string {
	return "s3://" + l.fetcher.Bucket() + "/" + l.key
}

// RecordSource lists every cutoff row, e.g. from a database table.
type RecordSource interface {
	ListAll(ctx context.Context) ([]models.Record, error)
}

// DBLoader reads cutoffs from a database table.
type DBLoader struct {
	source RecordSource
	name   string
}

// NewDBLoader creates a loader over source; name is used in logs.
func NewDBLoader(source RecordSource, name string) *DBLoader {
	return &DBLoader{source: source, name: name}
}

// Load lists and validates every row.
func (l *DBLoader) Load(ctx context.Context) ([]models.Record, error) {
	records, err := l.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, utils.ErrNoDataRows
	}

	var rowErrors []error
	for i, r := range records {
		if err := models.ValidateRecord(r); err != nil {
			rowErrors = append(rowErrors, fmt.Errorf("row %d: %w", i+1, err))
		}
	}
	if len(rowErrors) > 0 {
		return nil, fmt.Errorf("%w: %w", utils.ErrInvalidRowData, errors.Join(rowErrors...))
	}
	return records, nil
}

// Describe implements Loader.
func (l *DBLoader) Describe() string {
	return "postgres://" + l.name
}

// StaticLoader serves a fixed record set. Useful for tests and demos.
type StaticLoader struct {
	Records []models.Record
	Err     error
}

// Load implements Loader.
func (l *StaticLoader) Load(_ context.Context) ([]models.Record, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Records, nil
}

// Describe implements Loader.
func (l *StaticLoader) Describe() string {
	return "static"
}
