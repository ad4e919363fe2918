package annotate

import "github.com/juparave/workbench/internal/domain"

const (
	AspectRevision = "Revision"
	AspectDate     = "Date"
	AspectAuthor   = "Author"
)

// Aspect is one column of the annotation gutter
type Aspect struct {
	ID            string
	DisplayName   string
	ShowByDefault bool

	value func(info *LineInfo) string
	owner *FileAnnotation
}

// Value returns the column text for line n, or "" when n is out of range
func (asp *Aspect) Value(n int) string {
	info, ok := asp.owner.LineInfo(n)
	if !ok {
		return ""
	}
	return asp.value(info)
}

// Aspects returns the gutter columns in display order
func (a *FileAnnotation) Aspects() []*Aspect {
	return []*Aspect{
		{
			ID:          AspectRevision,
			DisplayName: "Revision",
			owner:       a,
			value: func(info *LineInfo) string {
				return domain.ShortHash(info.Hash())
			},
		},
		{
			ID:            AspectDate,
			DisplayName:   "Date",
			ShowByDefault: true,
			owner:         a,
			value: func(info *LineInfo) string {
				return a.dateOf(info).Format("2006-01-02")
			},
		},
		{
			ID:            AspectAuthor,
			DisplayName:   "Author",
			ShowByDefault: true,
			owner:         a,
			value: func(info *LineInfo) string {
				return info.Author().String()
			},
		},
	}
}
