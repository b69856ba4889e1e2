package pipeline

import (
	"context"
	"time"

	"github.com/biodata-harvester/internal/domain"
	"github.com/biodata-harvester/internal/mapping"
)

// runMap builds relationship links over the normalized bundle. Mapping
// never raises; anything unexpected is captured as a stage error.
func (p *Pipeline) runMap(_ context.Context, _ Input, result *Result) domain.StageResult {
	started := time.Now()
	var errs []string

	mapper := mapping.NewMapper(p.log)
	geneVariant := mapper.MapGenesAndVariants(result.Normalized.Genes, result.Normalized.Variants)
	variantPhenotype := mapper.MapVariantsAndPhenotypes(result.Normalized.Variants, result.Normalized.Phenotypes)

	result.Mapped = MappedBundle{
		GeneVariantLinks:      mapper.GeneVariantLinks(),
		VariantPhenotypeLinks: mapper.VariantPhenotypeLinks(),
		Networks:              mapper.Networks(),
	}

	created := geneVariant + variantPhenotype
	p.metrics.AddMapped(created)

	snapshot := map[string]int{
		"gene_variant_links":      geneVariant,
		"variant_phenotype_links": variantPhenotype,
		"networks":                len(result.Mapped.Networks),
	}
	return newStageResult(domain.StageMap, domain.StageCompleted, created, 0, snapshot, errs, started)
}

// runValidate checks every mapped link. Validation issues count the link as
// failed but never abort the stage.
func (p *Pipeline) runValidate(_ context.Context, _ Input, result *Result) domain.StageResult {
	started := time.Now()
	summary := ValidationSummary{}

	for _, link := range result.Mapped.GeneVariantLinks {
		if issues := mapping.ValidateGeneVariantLink(link); len(issues) > 0 {
			summary.Failed++
			summary.Errors = append(summary.Errors, issues...)
			continue
		}
		summary.Passed++
	}
	for _, link := range result.Mapped.VariantPhenotypeLinks {
		if issues := mapping.ValidateVariantPhenotypeLink(link); len(issues) > 0 {
			summary.Failed++
			summary.Errors = append(summary.Errors, issues...)
			continue
		}
		summary.Passed++
	}

	result.Validation = summary
	p.metrics.AddValidationErrors(summary.Failed)

	status := domain.StageCompleted
	if summary.Failed > 0 {
		status = domain.StagePartial
	}
	snapshot := map[string]int{
		"passed": summary.Passed,
		"failed": summary.Failed,
	}
	return newStageResult(domain.StageValidate, status, summary.Passed, summary.Failed, snapshot, summary.Errors, started)
}
