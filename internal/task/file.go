package task

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"
)

const (
	fileMode       = 0o600
	frontmatterSep = "---"
	maxSlugLen     = 40
)

var errNoFrontmatter = errors.New("missing frontmatter")

// Read parses a task file: YAML frontmatter followed by the description
// as the markdown body.
func Read(path string) (*Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the tasks dir
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	t.File = path
	return t, nil
}

// Parse decodes task file contents. Frontmatter keys go through Normalize,
// so hand-edited files may use aliases and camelCase keys.
func Parse(data []byte) (*Task, error) {
	front, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := yaml.Unmarshal(front, &rec); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	t, err := Normalize(rec)
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		return nil, errors.New("missing required field: id")
	}
	if t.Title == "" {
		return nil, errors.New("missing required field: title")
	}
	t.Description = body
	return t, nil
}

// Write serializes the task to path.
func Write(path string, t *Task) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("writing task file: %w", err)
	}
	return nil
}

// Marshal encodes a task in file format.
func Marshal(t *Task) ([]byte, error) {
	front, err := yaml.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterSep + "\n")
	buf.Write(front)
	buf.WriteString(frontmatterSep + "\n")
	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		if !strings.HasSuffix(t.Description, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

func splitFrontmatter(data []byte) ([]byte, string, error) {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(s, frontmatterSep+"\n") {
		return nil, "", errNoFrontmatter
	}
	rest := s[len(frontmatterSep)+1:]
	end := strings.Index(rest, "\n"+frontmatterSep+"\n")
	var front, body string
	switch {
	case end >= 0:
		front = rest[:end+1]
		body = rest[end+len(frontmatterSep)+2:]
	case strings.HasSuffix(rest, "\n"+frontmatterSep):
		front = strings.TrimSuffix(rest, frontmatterSep)
	default:
		return nil, "", fmt.Errorf("%w: no closing %s", errNoFrontmatter, frontmatterSep)
	}
	body = strings.TrimPrefix(body, "\n")
	return []byte(front), body, nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug builds a filename-safe slug from a title.
func GenerateSlug(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "task"
	}
	return slug
}

// GenerateFilename returns the file name for a task: "<id>-<slug>.md".
func GenerateFilename(id, title string) string {
	return id + "-" + GenerateSlug(title) + ".md"
}
