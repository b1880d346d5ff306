package manifest

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	apperrors "github.com/fetchctl/fetchctl/internal/errors"
)

// Manifest is the declarative list of downloads consumed at startup.
type Manifest struct {
	Downloads []Entry `yaml:"downloads" validate:"required,min=1,dive"`
}

// Entry names one download: a required absolute URL and an optional
// destination file name used verbatim.
type Entry struct {
	URL      string `yaml:"url" validate:"required,absolute_url"`
	FileName string `yaml:"file_name"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("absolute_url", validateAbsoluteURL)
}

// Load reads and parses the manifest at path and validates every entry.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if len(m.Downloads) == 0 {
		return nil, apperrors.ErrManifestEmpty
	}

	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}

	return &m, nil
}

// DestinationName returns the file name the entry downloads to: the explicit
// file_name when set, otherwise the last non-empty path segment of the URL,
// falling back to "index.html" when the URL path has no segments.
func (e Entry) DestinationName() string {
	if e.FileName != "" {
		return e.FileName
	}

	if u, err := url.Parse(e.URL); err == nil {
		segments := strings.Split(u.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segments[i] != "" {
				return segments[i]
			}
		}
	}

	return "index.html"
}

func validateAbsoluteURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
