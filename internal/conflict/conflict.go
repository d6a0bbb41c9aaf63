// Package conflict computes the materially-changed fields between a persisted
// transaction and an incoming sync payload, and renders the human-readable
// audit log stored on protected records. Pure functions, no side effects.
package conflict

import (
	"fmt"
	"strings"

	"github.com/RenatoMoratti/finance-app/internal/money"
	"github.com/RenatoMoratti/finance-app/internal/timefmt"
)

// Record is the comparable view of a transaction: the five fields sync is
// allowed to observe diverging.
type Record struct {
	Amount      float64
	Description string
	Date        string
	Category    string
	Type        string
}

// FieldDiff is one materially-changed field with display-ready old/new values.
type FieldDiff struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Describe returns the set of fields on which existing and incoming
// materially differ. Amounts compare under the cent tolerance, dates under
// comparison normalization, everything else exactly. An empty result means
// the records agree.
func Describe(existing, incoming Record) []FieldDiff {
	var diffs []FieldDiff

	if money.Differs(existing.Amount, incoming.Amount) {
		diffs = append(diffs, FieldDiff{
			Field: "Valor",
			Old:   money.FormatBRL(existing.Amount),
			New:   money.FormatBRL(incoming.Amount),
		})
	}
	if existing.Description != incoming.Description {
		diffs = append(diffs, FieldDiff{
			Field: "Descrição",
			Old:   fmt.Sprintf("'%s'", existing.Description),
			New:   fmt.Sprintf("'%s'", incoming.Description),
		})
	}
	if !timefmt.Equal(existing.Date, incoming.Date) {
		diffs = append(diffs, FieldDiff{
			Field: "Data",
			Old:   existing.Date,
			New:   incoming.Date,
		})
	}
	if existing.Category != incoming.Category {
		diffs = append(diffs, FieldDiff{
			Field: "Categoria",
			Old:   fmt.Sprintf("'%s'", existing.Category),
			New:   fmt.Sprintf("'%s'", incoming.Category),
		})
	}
	if existing.Type != incoming.Type {
		diffs = append(diffs, FieldDiff{
			Field: "Tipo",
			Old:   existing.Type,
			New:   incoming.Type,
		})
	}

	return diffs
}

// RenderLog renders diffs as the multi-line audit text stored on the
// transaction:
//
//	[CONFLITO] 2025-09-08 09:34:33
//	• Valor: R$ 10,00 → R$ 12,50
//	• Descrição: 'ANTIGA' → 'NOVA'
//
// Returns "" when there is nothing to report.
func RenderLog(diffs []FieldDiff, timestamp string) string {
	if len(diffs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(diffs)+1)
	lines = append(lines, "[CONFLITO] "+timestamp)
	for _, d := range diffs {
		lines = append(lines, fmt.Sprintf("• %s: %s → %s", d.Field, d.Old, d.New))
	}
	return strings.Join(lines, "\n")
}
