package seo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPersistedData marks an override that could not be decoded.
	// Resolve logs it and falls back; only Override surfaces it.
	ErrMalformedPersistedData = errors.New("seo: malformed persisted override")
	// ErrCustomMetaInvalid marks a customMeta entry without exactly one of
	// name or property.
	ErrCustomMetaInvalid = errors.New("seo: custom meta needs exactly one of name or property")
	// ErrPathRequired is returned by writes without a page path.
	ErrPathRequired = errors.New("seo: path is required")
)

// MalformedInputError reports a configuration that cannot be persisted.
type MalformedInputError struct {
	Field string
	Err   error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("seo: %s cannot be saved: %v", e.Field, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Configuration is the set of document metadata fields for one page. Empty
// strings and empty collections mean "not set".
type Configuration struct {
	Title              string         `json:"title,omitempty"`
	Description        string         `json:"description,omitempty"`
	Keywords           string         `json:"keywords,omitempty"`
	Canonical          string         `json:"canonical,omitempty"`
	Robots             string         `json:"robots,omitempty"`
	Author             string         `json:"author,omitempty"`
	Viewport           string         `json:"viewport,omitempty"`
	ThemeColor         string         `json:"themeColor,omitempty"`
	OGTitle            string         `json:"ogTitle,omitempty"`
	OGDescription      string         `json:"ogDescription,omitempty"`
	OGImage            string         `json:"ogImage,omitempty"`
	OGType             string         `json:"ogType,omitempty"`
	TwitterCard        string         `json:"twitterCard,omitempty"`
	TwitterTitle       string         `json:"twitterTitle,omitempty"`
	TwitterDescription string         `json:"twitterDescription,omitempty"`
	TwitterImage       string         `json:"twitterImage,omitempty"`
	StructuredData     map[string]any `json:"structuredData,omitempty"`
	CustomMeta         []CustomMeta   `json:"customMeta,omitempty"`
}

// stringFields lists pointers to every scalar field in declaration order.
func (c *Configuration) stringFields() []*string {
	return []*string{
		&c.Title, &c.Description, &c.Keywords, &c.Canonical, &c.Robots,
		&c.Author, &c.Viewport, &c.ThemeColor,
		&c.OGTitle, &c.OGDescription, &c.OGImage, &c.OGType,
		&c.TwitterCard, &c.TwitterTitle, &c.TwitterDescription, &c.TwitterImage,
	}
}

// IsZero reports whether no field is set.
func (c Configuration) IsZero() bool {
	for _, field := range c.stringFields() {
		if *field != "" {
			return false
		}
	}
	return len(c.StructuredData) == 0 && len(c.CustomMeta) == 0
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	out := c
	if c.StructuredData != nil {
		out.StructuredData = cloneValue(c.StructuredData).(map[string]any)
	}
	if c.CustomMeta != nil {
		out.CustomMeta = append([]CustomMeta(nil), c.CustomMeta...)
	}
	return out
}

// Validate checks that the configuration can be persisted.
func (c Configuration) Validate() error {
	for i, meta := range c.CustomMeta {
		if err := meta.Validate(); err != nil {
			return &MalformedInputError{Field: fmt.Sprintf("customMeta[%d]", i), Err: err}
		}
	}
	if c.StructuredData != nil {
		if _, err := json.Marshal(c.StructuredData); err != nil {
			return &MalformedInputError{Field: "structuredData", Err: err}
		}
	}
	return nil
}

// CustomMeta is an extra meta tag keyed by exactly one of Name or Property.
type CustomMeta struct {
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content"`
}

// Validate enforces the name XOR property invariant.
func (m CustomMeta) Validate() error {
	hasName := strings.TrimSpace(m.Name) != ""
	hasProperty := strings.TrimSpace(m.Property) != ""
	if hasName == hasProperty {
		return ErrCustomMetaInvalid
	}
	return nil
}

// attribute returns the keying attribute and its value.
func (m CustomMeta) attribute() (string, string) {
	if strings.TrimSpace(m.Name) != "" {
		return "name", strings.TrimSpace(m.Name)
	}
	return "property", strings.TrimSpace(m.Property)
}

// normalized trims the keys so a blank key is encoded as absent.
func (m CustomMeta) normalized() CustomMeta {
	m.Name = strings.TrimSpace(m.Name)
	m.Property = strings.TrimSpace(m.Property)
	return m
}

type customMetaJSON CustomMeta

// MarshalJSON refuses entries that break the name XOR property invariant and
// writes only the key that is set.
func (m CustomMeta) MarshalJSON() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(customMetaJSON(m.normalized()))
}

// UnmarshalJSON rejects entries that break the name XOR property invariant.
func (m *CustomMeta) UnmarshalJSON(data []byte) error {
	var decoded customMetaJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if err := CustomMeta(decoded).Validate(); err != nil {
		return err
	}
	*m = CustomMeta(decoded).normalized()
	return nil
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
