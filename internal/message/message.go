// Package message renders the per-entity message payloads. Rendering is an
// explicit two-phase contract: substitute named values, then normalize
// literal escape markers into real line breaks. Rendered messages are
// always staged for human review; there is no send path anywhere in this
// system.
package message

import (
	"fmt"
	"os"
	"strings"
)

// Templates is the set of named message templates, keyed by the "## key"
// section headers of the template file.
type Templates map[string]string

// LoadTemplates reads a markdown template file. Each "## <key>" heading
// starts a template; its body runs until the next heading.
func LoadTemplates(path string) (Templates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(string(raw)), nil
}

// ParseTemplates splits markdown content into "## key" sections.
func ParseTemplates(content string) Templates {
	templates := Templates{}
	sections := strings.Split(content, "\n## ")
	// The content before the first heading (or a leading "## " on the
	// first line) needs special casing.
	if strings.HasPrefix(content, "## ") {
		sections = append([]string{strings.TrimPrefix(content, "## ")}, sections[1:]...)
	} else {
		sections = sections[1:]
	}
	for _, section := range sections {
		key, body, found := strings.Cut(section, "\n")
		if !found {
			key, body = section, ""
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		templates[key] = strings.TrimSpace(body)
	}
	return templates
}

// Get returns the template for key, or an error naming the missing key.
func (t Templates) Get(key string) (string, error) {
	template, ok := t[key]
	if !ok {
		return "", fmt.Errorf("missing message template key: %s", key)
	}
	return template, nil
}

// Render substitutes {name}-style placeholders and then normalizes literal
// \n markers left by legacy templates into real newlines. Placeholders
// with no corresponding value are left intact so a half-filled message is
// visible instead of silently blank.
func Render(template string, values map[string]string) string {
	rendered := template
	for key, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", value)
	}
	return strings.ReplaceAll(rendered, `\n`, "\n")
}
