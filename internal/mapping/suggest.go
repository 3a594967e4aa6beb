package mapping

import (
	"github.com/Hsbtqemy/Mapala/internal/engine"
	"github.com/Hsbtqemy/Mapala/internal/logger"
	"github.com/Hsbtqemy/Mapala/internal/match"
)

// Suggestion is an auto-matched mapping with its similarity score.
type Suggestion struct {
	Field  engine.TemplateField
	Column engine.SourceColumn
	Score  float64
}

// Suggest proposes a source column for every template field that has no
// mapping yet, by fuzzy-matching the field's technical label (and its label
// row values) against the source column names. Only matches at or above
// minScore are returned; existing mappings are never touched.
func Suggest(f *File, fields []engine.TemplateField, columns []engine.SourceColumn, minScore float64) []Suggestion {
	var suggestions []Suggestion

	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if _, mapped := f.Find(field.Name, field.Index); mapped {
			continue
		}

		best := Suggestion{Field: field, Score: -1}
		for _, col := range columns {
			score := match.Score(field.Name, col.Name)
			// A label row can describe the field better than its
			// technical name does.
			for _, label := range field.Labels {
				if s := match.Score(label, col.Name); s > score {
					score = s
				}
			}
			if score > best.Score {
				best.Column = col
				best.Score = score
			}
		}

		if best.Score >= minScore {
			logger.Debug("Suggested mapping",
				"field", field.Name,
				"column", best.Column.Name,
				"score", best.Score)
			suggestions = append(suggestions, best)
		}
	}

	return suggestions
}

// ApplySuggestions merges suggestions into the mapping file as simple
// mappings.
func ApplySuggestions(f *File, suggestions []Suggestion) {
	for _, s := range suggestions {
		f.Set(FieldMapping{
			Target:       s.Field.Name,
			ColIndex:     s.Field.Index,
			Mode:         ModeSimple,
			SourceColumn: s.Column.Name,
		})
	}
}
