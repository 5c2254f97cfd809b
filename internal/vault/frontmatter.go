package vault

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"
)

// Metadata is what the navigator needs from a note's contents.
type Metadata struct {
	Title      string
	Tags       []string
	Properties map[string]any
	Created    time.Time
	Modified   time.Time
}

// inlineTagPattern finds #tags in the note body. A tag must start after
// whitespace or line start and may contain letters, digits, "_", "-" and "/".
var inlineTagPattern = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_\-/]*[\p{L}_\-/][\p{L}\p{N}_\-/]*)`)

// parseNote splits content into frontmatter metadata and body and collects
// tags from both. Malformed frontmatter is logged and treated as absent.
func parseNote(notePath, content string) (Metadata, string) {
	props, body, err := splitFrontmatter(content)
	if err != nil {
		log.WithError(err).WithField("path", notePath).Warn("ignore malformed frontmatter")
	}

	meta := Metadata{Properties: props}
	if props != nil {
		meta.Title = stringProperty(props, "title")
		meta.Tags = append(meta.Tags, tagsFromProperty(props["tags"])...)
		meta.Tags = append(meta.Tags, tagsFromProperty(props["tag"])...)
		meta.Created = dateProperty(notePath, props, "created", "date")
		meta.Modified = dateProperty(notePath, props, "modified", "updated")
	}
	meta.Tags = append(meta.Tags, inlineTags(body)...)
	meta.Tags = normalizeTagList(meta.Tags)
	return meta, body
}

// splitFrontmatter extracts a leading "---" delimited YAML block.
func splitFrontmatter(content string) (map[string]any, string, error) {
	const delim = "---"
	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, delim+"\n") && !strings.HasPrefix(trimmed, delim+"\r\n") {
		return nil, content, nil
	}

	lines := strings.Split(trimmed, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delim {
			end = i
			break
		}
	}
	if end <= 0 {
		return nil, content, nil
	}

	body := strings.Join(lines[end+1:], "\n")
	props := map[string]any{}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &props); err != nil {
		return nil, body, fmt.Errorf("parse frontmatter: %w", err)
	}
	return props, body, nil
}

func stringProperty(props map[string]any, key string) string {
	value, ok := props[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// tagsFromProperty accepts a YAML list or a comma/space separated string.
func tagsFromProperty(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// dateProperty returns the first parseable date among keys. YAML may already
// have decoded the value as a time.Time; strings go through dateparse.
func dateProperty(notePath string, props map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		value, ok := props[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case time.Time:
			return v
		case string:
			t, err := dateparse.ParseLocal(strings.TrimSpace(v))
			if err != nil {
				log.WithError(err).WithField("path", notePath).WithField("key", key).Debug("unparseable frontmatter date, using file time")
				continue
			}
			return t
		}
	}
	return time.Time{}
}

// inlineTags returns #tags found in body text outside fenced code blocks.
func inlineTags(body string) []string {
	var tags []string
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, match := range inlineTagPattern.FindAllStringSubmatch(line, -1) {
			tags = append(tags, match[1])
		}
	}
	return tags
}

// normalizeTagList trims markers and separators and drops duplicates while
// keeping the first-seen casing.
func normalizeTagList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, value := range values {
		tag := strings.Trim(strings.TrimSpace(value), "#/")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
