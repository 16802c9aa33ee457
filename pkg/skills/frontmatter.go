package skills

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

// ParseFrontmatter splits SKILL.md content into its YAML header and body in a
// single pass. Content without a leading delimiter has an empty header and is
// returned whole as the body.
func ParseFrontmatter(content []byte) (map[string]any, string, error) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	text := string(content)

	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || trimLine(lines[0]) != frontmatterDelimiter {
		return map[string]any{}, text, nil
	}

	offset := len(lines[0])
	headerStart := offset
	for _, line := range lines[1:] {
		if trimLine(line) == frontmatterDelimiter {
			header := text[headerStart:offset]
			body := text[offset+len(line):]

			record, err := decodeHeader(header)
			if err != nil {
				return nil, "", err
			}
			return record, body, nil
		}
		offset += len(line)
	}

	return nil, "", errors.New("missing closing frontmatter delimiter")
}

func decodeHeader(header string) (map[string]any, error) {
	record := map[string]any{}
	if strings.TrimSpace(header) == "" {
		return record, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(header), &node); err != nil {
		return nil, errors.Wrap(err, "failed to parse frontmatter")
	}
	if len(node.Content) == 0 {
		return record, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("frontmatter must be a mapping")
	}
	if err := node.Decode(&record); err != nil {
		return nil, errors.Wrap(err, "failed to decode frontmatter")
	}

	return record, nil
}

func trimLine(line string) string {
	return strings.TrimRight(line, " \t\r\n")
}
