package seats

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
)

// SeedClassID accepts string and integer ids; integers are kept in base 10
// so seeded ids match the ones the class catalog reports.
type SeedClassID string

func (id *SeedClassID) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*id = SeedClassID(t)
	case int:
		*id = SeedClassID(strconv.Itoa(t))
	case int64:
		*id = SeedClassID(strconv.FormatInt(t, 10))
	case uint64:
		*id = SeedClassID(strconv.FormatUint(t, 10))
	case nil:
		return ErrInvalidClassID
	default:
		return fmt.Errorf("class id must be a string or an integer, got %T", v)
	}
	return nil
}

// SeedEntry describes one class to initialize. A nil Capacity uses the store default.
type SeedEntry struct {
	ClassID    SeedClassID `yaml:"id"`
	Capacity   *int        `yaml:"capacity"`
	Enrollment int         `yaml:"enrollment"`
}

type seedFile struct {
	Classes []SeedEntry `yaml:"classes"`
}

// ParseSeed decodes a seed document:
//
//	classes:
//	  - id: 101
//	    capacity: 25
//	    enrollment: 3
func ParseSeed(data []byte) ([]SeedEntry, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, e := range f.Classes {
		if e.ClassID == "" {
			return nil, fmt.Errorf("seed entry %d: %w", i, ErrInvalidClassID)
		}
	}
	return f.Classes, nil
}

// LoadSeedFile reads and parses the seed document at path
func LoadSeedFile(path string) ([]SeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// Seed initializes every entry. Existing classes keep their stored values,
// so seeding the same file twice is harmless.
func (s *Store) Seed(ctx context.Context, entries []SeedEntry) ([]SeatCount, error) {
	out := make([]SeatCount, 0, len(entries))
	for _, e := range entries {
		capacity := s.defaultCapacity
		if e.Capacity != nil {
			capacity = *e.Capacity
		}
		seat, err := s.Initialize(ctx, string(e.ClassID), capacity, e.Enrollment)
		if err != nil {
			return out, fmt.Errorf("failed to seed class %s: %w", e.ClassID, err)
		}
		out = append(out, *seat)
	}
	return out, nil
}
