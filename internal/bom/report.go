package bom

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mearah/craftbom/internal/domain"
	"github.com/mearah/craftbom/internal/repository"
)

// ReportLine is one base material of the shopping list with its market cost
type ReportLine struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitCost  float64 `json:"unit_cost"`
	TotalCost float64 `json:"total_cost"`
}

// IntermediateLine is one crafted item passed through during the expansion
type IntermediateLine struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Report is the display-ready form of a resolution: named, sorted lines plus
// the total market cost with the configured transaction tax applied.
type Report struct {
	Lines         []ReportLine       `json:"requirements"`
	Intermediates []IntermediateLine `json:"intermediates,omitempty"`
	TotalCost     float64            `json:"total_cost"`
	TaxRate       float64            `json:"tax_rate"`
	TotalWithTax  float64            `json:"total_with_tax"`
}

// Reporter turns raw totals into a Report by joining item names and costs
// from the store.
type Reporter struct {
	repo     Repository
	settings repository.Settings
	collator *collate.Collator
	titler   cases.Caser
}

// NewReporter creates a new Reporter
func NewReporter(repo Repository, settings repository.Settings) *Reporter {
	return &Reporter{
		repo:     repo,
		settings: settings,
		collator: collate.New(language.English),
		titler:   cases.Title(language.English),
	}
}

// Build formats a resolution result for display
func (r *Reporter) Build(ctx context.Context, totals *Totals) (*Report, error) {
	report := &Report{Lines: []ReportLine{}}

	for id, quantity := range totals.Base {
		item, err := r.repo.GetItemByID(ctx, domain.KindBase, id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up base material %d: %w", id, err)
		}
		line := ReportLine{
			ID:        id,
			Name:      item.Name,
			Quantity:  quantity,
			UnitCost:  item.UnitCost,
			TotalCost: item.UnitCost * float64(quantity),
		}
		report.TotalCost += line.TotalCost
		report.Lines = append(report.Lines, line)
	}

	r.collator.Sort(byName(report.Lines))

	for key, quantity := range totals.Intermediates {
		item, err := r.repo.GetItemByID(ctx, key.Kind, key.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", key, err)
		}
		report.Intermediates = append(report.Intermediates, IntermediateLine{
			Kind:     r.titler.String(string(key.Kind)),
			Name:     item.Name,
			Quantity: quantity,
		})
	}
	r.collator.Sort(intermediatesByName(report.Intermediates))

	rate, err := r.settings.GetTaxRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get tax rate: %w", err)
	}
	report.TaxRate = rate
	report.TotalWithTax = report.TotalCost * (1 + rate/100)

	return report, nil
}

// byName adapts report lines to the collator's sort interface
type byName []ReportLine

func (s byName) Len() int           { return len(s) }
func (s byName) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s byName) Bytes(i int) []byte { return []byte(s[i].Name) }

type intermediatesByName []IntermediateLine

func (s intermediatesByName) Len() int           { return len(s) }
func (s intermediatesByName) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s intermediatesByName) Bytes(i int) []byte { return []byte(s[i].Name) }
