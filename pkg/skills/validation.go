package skills

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	// MaxNameLength is the maximum number of characters in a skill name
	MaxNameLength = 64
	// MaxDescriptionLength is the maximum number of characters in a skill description
	MaxDescriptionLength = 1024
)

// Skill IDs are lowercase alphanumeric segments joined by single hyphens
var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidationError is returned when a SKILL.md file has invalid frontmatter.
// Err holds every violated constraint.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid skill file at %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateID reports whether id is a valid skill ID
func ValidateID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidateMetadata converts an untyped frontmatter record into Metadata.
// All violations are reported together rather than stopping at the first one.
func ValidateMetadata(record map[string]any) (Metadata, error) {
	var md Metadata
	var result *multierror.Error

	for _, key := range []string{"name", "description"} {
		if v, ok := record[key]; !ok || v == nil {
			result = multierror.Append(result, errors.Errorf("%s: required", key))
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &md,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return Metadata{}, errors.Wrap(err, "failed to create metadata decoder")
	}
	if err := decoder.Decode(record); err != nil {
		var decodeErr *mapstructure.Error
		if errors.As(err, &decodeErr) {
			for _, msg := range decodeErr.Errors {
				result = multierror.Append(result, errors.New(msg))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if n := utf8.RuneCountInString(md.Name); n > MaxNameLength {
		result = multierror.Append(result, errors.Errorf("name: must be at most %d characters, got %d", MaxNameLength, n))
	}
	if n := utf8.RuneCountInString(md.Description); n > MaxDescriptionLength {
		result = multierror.Append(result, errors.Errorf("description: must be at most %d characters, got %d", MaxDescriptionLength, n))
	}

	if result != nil {
		result.ErrorFormat = joinViolations
		return Metadata{}, result
	}

	return md, nil
}

func joinViolations(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
