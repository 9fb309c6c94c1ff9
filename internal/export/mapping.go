package export

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/mediasheet/internal/domain"
)

//go:embed default_mapping.yaml
var defaultMappingYAML []byte

// Built-in accessors read entity properties instead of stored attributes.
const (
	accessorID    = "@id"
	accessorName  = "@name"
	accessorOrder = "@order"
)

// MappingFile is the YAML layout of a column mapping.
type MappingFile struct {
	Summary []SummaryFieldFile `yaml:"summary"`
	Columns []ColumnFile       `yaml:"columns"`
}

type SummaryFieldFile struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
}

// ColumnFile maps one output column to a stored attribute per level.
type ColumnFile struct {
	Name   string            `yaml:"name"`
	Levels map[string]string `yaml:"levels"`
}

// Accessor reads one value from an entity. The boolean reports whether the
// entity defines the value at all.
type Accessor struct {
	Source string
	get    func(domain.Entity) (any, bool)
}

func (a Accessor) Get(e domain.Entity) (any, bool) {
	return a.get(e)
}

func newAccessor(source string) Accessor {
	switch source {
	case accessorID:
		return Accessor{Source: source, get: func(e domain.Entity) (any, bool) { return e.ID, true }}
	case accessorName:
		return Accessor{Source: source, get: func(e domain.Entity) (any, bool) { return e.Name, true }}
	case accessorOrder:
		return Accessor{Source: source, get: func(e domain.Entity) (any, bool) { return e.Order, true }}
	}
	return Accessor{Source: source, get: func(e domain.Entity) (any, bool) { return e.Field(source) }}
}

// Column is one configured output column with its resolved accessors.
type Column struct {
	Name   string
	levels map[domain.Level]Accessor
}

// Accessor returns the accessor configured for level, if any.
func (c Column) Accessor(level domain.Level) (Accessor, bool) {
	a, ok := c.levels[level]
	return a, ok
}

type SummaryField struct {
	Header   string
	Accessor Accessor
}

// Mapping is a validated column mapping. Build one with ParseMapping,
// LoadMapping or DefaultMapping.
type Mapping struct {
	Columns []Column
	Summary []SummaryField
}

// Headers returns the configured column names in output order.
func (m *Mapping) Headers() []string {
	out := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		out[i] = c.Name
	}
	return out
}

// DefaultMapping returns the built-in mapping used when no file is configured.
func DefaultMapping() *Mapping {
	m, err := ParseMapping(defaultMappingYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in column mapping is invalid: %v", err))
	}
	return m
}

// LoadMapping reads and validates a YAML mapping file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return m, nil
}

// ParseMapping decodes YAML and validates it. All problems are reported
// together.
func ParseMapping(data []byte) (*Mapping, error) {
	var file MappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing mapping YAML: %w", err)
	}
	return BuildMapping(file)
}

var reservedHeaders = map[string]bool{"Level": true, "Tab": true, "Section": true, "Tactic": true, "Placement": true}

// BuildMapping validates file: column names must be unique and non-reserved,
// every level must be known and every column must map at least one level.
func BuildMapping(file MappingFile) (*Mapping, error) {
	var errs []error
	m := &Mapping{}
	names := map[string]bool{}

	for i, cf := range file.Columns {
		name := strings.TrimSpace(cf.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("columns[%d]: name is required", i))
			continue
		case reservedHeaders[name]:
			errs = append(errs, fmt.Errorf("column %q: name is reserved for the hierarchy columns", name))
			continue
		case names[name]:
			errs = append(errs, fmt.Errorf("column %q: duplicate column", name))
			continue
		}
		names[name] = true

		if len(cf.Levels) == 0 {
			errs = append(errs, fmt.Errorf("column %q: no level is mapped", name))
			continue
		}
		col := Column{Name: name, levels: map[domain.Level]Accessor{}}
		for levelName, source := range cf.Levels {
			level, err := domain.ParseLevel(levelName)
			if err != nil {
				errs = append(errs, fmt.Errorf("column %q: %w", name, err))
				continue
			}
			source = strings.TrimSpace(source)
			if source == "" {
				errs = append(errs, fmt.Errorf("column %q: level %s has an empty field", name, level))
				continue
			}
			if _, dup := col.levels[level]; dup {
				errs = append(errs, fmt.Errorf("column %q: level %s is mapped twice", name, level))
				continue
			}
			col.levels[level] = newAccessor(source)
		}
		m.Columns = append(m.Columns, col)
	}

	for i, sf := range file.Summary {
		header := strings.TrimSpace(sf.Header)
		field := strings.TrimSpace(sf.Field)
		if header == "" || field == "" {
			errs = append(errs, fmt.Errorf("summary[%d]: header and field are required", i))
			continue
		}
		m.Summary = append(m.Summary, SummaryField{Header: header, Accessor: newAccessor(field)})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// FormatValue renders a stored attribute as cell text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format("2006-01-02")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
