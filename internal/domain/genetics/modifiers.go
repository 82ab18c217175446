// Package genetics maps an athlete's genotype profile to sensitivity flags
// and applies them to the workload risk thresholds.
package genetics

import (
	"strings"

	"github.com/okian/taper/internal/domain/model"
)

// Gene names recognized by the extractor, matched case-insensitively.
const (
	geneIL6   = "il6"
	geneTNF   = "tnf"
	geneIL10  = "il10"
	geneADRB1 = "adrb1"
	geneCOMT  = "comt"
	geneCLOCK = "clock"
	genePER3  = "per3"
	geneACTN3 = "actn3"
)

// ExtractModifiers derives the boolean modifiers from a genetic profile.
// Gene names are case-insensitive with last write winning on duplicates;
// genotype values are compared exactly. Missing genes yield false for every
// clause that references them.
func ExtractModifiers(entries []model.GeneticProfileEntry) model.GeneticsModifiers {
	dict := make(map[string]string, len(entries))
	for _, e := range entries {
		gene := strings.ToLower(strings.TrimSpace(e.Gene))
		if gene == "" {
			continue
		}
		dict[gene] = e.Genotype
	}

	return model.GeneticsModifiers{
		InflammationSensitive: strings.Contains(dict[geneIL6], "G") ||
			dict[geneTNF] == "AA" ||
			dict[geneIL10] == "CC",
		StressSensitive: dict[geneADRB1] == "AA" ||
			dict[geneCOMT] == "AA",
		CircadianSensitive: dict[geneCLOCK] == "AA" ||
			dict[genePER3] == "long",
		PowerDominant: dict[geneACTN3] == "RR",
	}
}
