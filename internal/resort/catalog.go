package resort

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when no resort matches the requested id.
var ErrNotFound = errors.New("resort not found")

var validate = validator.New()

// Catalog is an immutable, ordered set of resorts.
type Catalog struct {
	resorts []Resort
	byID    map[string]int
}

type catalogFile struct {
	Resorts []Resort `json:"resorts"`
}

// LoadFile reads and validates a catalog from a JSON file of the form {"resorts": [...]}.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resort data: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("invalid resort data in %s: %w", path, err)
	}

	c, err := NewCatalog(f.Resorts)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: loaded %d resorts from %s", len(c.resorts), path)
	return c, nil
}

// NewCatalog validates resorts and keeps their order. Ids must be unique.
func NewCatalog(resorts []Resort) (*Catalog, error) {
	c := &Catalog{
		resorts: make([]Resort, 0, len(resorts)),
		byID:    make(map[string]int, len(resorts)),
	}

	for _, r := range resorts {
		if r.Country == "" {
			r.Country = "Switzerland"
		}
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("resort %q: %w", r.ID, err)
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate resort id %q", r.ID)
		}
		c.byID[r.ID] = len(c.resorts)
		c.resorts = append(c.resorts, r)
	}

	return c, nil
}

// All returns every resort in catalog order. The slice is a copy.
func (c *Catalog) All() []Resort {
	out := make([]Resort, len(c.resorts))
	copy(out, c.resorts)
	return out
}

// ByID looks up a resort.
func (c *Catalog) ByID(id string) (Resort, error) {
	i, ok := c.byID[id]
	if !ok {
		return Resort{}, ErrNotFound
	}
	return c.resorts[i], nil
}

// ByRegion returns resorts whose region matches case-insensitively.
func (c *Catalog) ByRegion(region string) []Resort {
	return c.filter(func(r Resort) bool { return strings.EqualFold(r.Region, region) })
}

// ByCanton returns resorts whose canton matches case-insensitively.
// Resorts without a canton never match.
func (c *Catalog) ByCanton(canton string) []Resort {
	return c.filter(func(r Resort) bool { return r.Canton != "" && strings.EqualFold(r.Canton, canton) })
}

// Len returns the number of resorts.
func (c *Catalog) Len() int {
	return len(c.resorts)
}

func (c *Catalog) filter(keep func(Resort) bool) []Resort {
	var out []Resort
	for _, r := range c.resorts {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
