package export

import (
	"github.com/alexanderramin/mediasheet/internal/domain"
)

// Summary extracts the campaign summary as a header row and a value row.
// Attributes the campaign does not define are left blank.
func Summary(c *domain.Campaign, fields []SummaryField) [][]any {
	header := make([]any, len(fields))
	values := make([]any, len(fields))
	entity := domain.Entity{ID: c.ID, Name: c.Name, Fields: c.Fields}
	for i, f := range fields {
		header[i] = f.Header
		v, _ := f.Accessor.Get(entity)
		values[i] = FormatValue(v)
	}
	return [][]any{header, values}
}
