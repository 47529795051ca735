// Package content holds the bot's static text: the affirmation pools and
// the resource directory. Both live as JSON files in the data directory
// so operators can edit them without a rebuild.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	AffirmationsFile = "affirmations.json"
	ResourcesFile    = "resources.json"
)

// Affirmations are the two text pools the bot draws from.
type Affirmations struct {
	General []string `json:"general"`
	Comfort []string `json:"comfort"`
}

func (a Affirmations) validate() error {
	for i, s := range a.General {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("general[%d] is empty", i)
		}
	}
	for i, s := range a.Comfort {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("comfort[%d] is empty", i)
		}
	}
	return nil
}

// Resource is one external link.
type Resource struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Category is a named group of resources.
type Category struct {
	Name      string
	Resources []Resource
}

// Resources is the resource directory. Categories keep the order they
// have in the file.
type Resources []Category

// Lookup returns the category named name, ignoring case.
func (r Resources) Lookup(name string) (Category, bool) {
	for _, c := range r {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// Names lists the category names in order.
func (r Resources) Names() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Name
	}
	return out
}

func (r Resources) validate() error {
	for _, c := range r {
		if c.Name == "" {
			return errors.New("category with empty name")
		}
		for i, res := range c.Resources {
			if res.Name == "" || res.URL == "" {
				return fmt.Errorf("%s[%d]: name and url are required", c.Name, i)
			}
		}
	}
	return nil
}

// MarshalJSON writes the categories as one object, in order.
func (r Resources) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		items := c.Resources
		if items == nil {
			items = []Resource{}
		}
		val, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a {"category": [resource, ...]} object, keeping
// key order.
func (r *Resources) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*r = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("resources: want object, got %v", tok)
	}

	var out Resources
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("resources: want category name, got %v", tok)
		}
		var items []Resource
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("resources: category %q: %w", name, err)
		}
		out = append(out, Category{Name: name, Resources: items})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
