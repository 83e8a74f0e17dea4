package chart

import (
	"fmt"
	"sort"
	"strconv"

	"clusterview/internal/domain"
)

// FeatureValue is one aggregate shown on a cluster card.
type FeatureValue struct {
	Name  string
	Value float64
}

// Formatted renders the value with two decimals.
func (f FeatureValue) Formatted() string { return strconv.FormatFloat(f.Value, 'f', 2, 64) }

// Card summarises one cluster's feature aggregates.
type Card struct {
	Cluster  int
	Title    string
	Color    string
	Features []FeatureValue
}

// BuildCards returns one card per cluster key in details, ordered by
// cluster index, features sorted by name. Keys that are not cluster indices
// are reported in skipped.
func BuildCards(details domain.ClusterDetails) (cards []Card, skipped []string) {
	for key, features := range details {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 {
			skipped = append(skipped, key)
			continue
		}
		card := Card{Cluster: idx, Title: ClusterName(idx), Color: ColorFor(idx)}
		for name, v := range features {
			card.Features = append(card.Features, FeatureValue{Name: name, Value: v})
		}
		sort.Slice(card.Features, func(i, j int) bool { return card.Features[i].Name < card.Features[j].Name })
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Cluster < cards[j].Cluster })
	sort.Strings(skipped)
	return cards, skipped
}

// String renders the card as plain text, one feature per line.
func (c Card) String() string {
	s := c.Title + "\n"
	for _, f := range c.Features {
		s += fmt.Sprintf("  %s  %s\n", f.Name, f.Formatted())
	}
	return s
}
