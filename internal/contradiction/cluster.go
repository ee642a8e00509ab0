package contradiction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexmetrica/juris-analyzer/pkg/models"
)

// UnspecifiedTheme is the cluster key for contradictions whose cases carry
// no theme tag.
const UnspecifiedTheme = "unspecified"

// clusterKeywords is how many TF-IDF keywords each cluster carries.
const clusterKeywords = 5

// Cluster partitions contradictions by theme and computes per-cluster
// statistics. The theme key is case1's theme, falling back to case2's, then
// to UnspecifiedTheme. Clusters are sorted by member count descending;
// equal counts keep first-encounter order.
func Cluster(contradictions []models.Contradiction) []models.ContradictionCluster {
	groups := make(map[string][]models.Contradiction)
	var order []string

	for _, contradiction := range contradictions {
		theme := clusterTheme(contradiction)
		if _, seen := groups[theme]; !seen {
			order = append(order, theme)
		}
		groups[theme] = append(groups[theme], contradiction)
	}

	extractor := NewKeywordExtractor()

	clusters := make([]models.ContradictionCluster, 0, len(order))
	for _, theme := range order {
		members := groups[theme]

		bodies := make(map[string]bool)
		severityDist := make(map[models.Severity]int)
		var texts []string
		for _, c := range members {
			bodies[c.Case1.Body.Code] = true
			bodies[c.Case2.Body.Code] = true
			severityDist[c.Severity]++
			texts = append(texts, c.Case1.Text, c.Case2.Text)
		}

		affected := make([]string, 0, len(bodies))
		for code := range bodies {
			affected = append(affected, code)
		}
		sort.Strings(affected)

		var keywords []string
		for _, kw := range extractor.ExtractKeywords(texts, clusterKeywords) {
			keywords = append(keywords, kw.Word)
		}

		clusters = append(clusters, models.ContradictionCluster{
			Theme:                theme,
			Contradictions:       members,
			AffectedBodies:       affected,
			TotalCases:           len(members) * 2,
			SeverityDistribution: severityDist,
			Keywords:             keywords,
			Summary:              clusterSummary(theme, members, affected),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Contradictions) > len(clusters[j].Contradictions)
	})

	return clusters
}

func clusterTheme(c models.Contradiction) string {
	if c.Case1.Theme != "" {
		return c.Case1.Theme
	}
	if c.Case2.Theme != "" {
		return c.Case2.Theme
	}
	return UnspecifiedTheme
}

func clusterSummary(theme string, members []models.Contradiction, bodies []string) string {
	return fmt.Sprintf("Theme %q has %d contradiction(s) involving %d issuing body(ies): %s",
		theme, len(members), len(bodies), strings.Join(bodies, ", "))
}
