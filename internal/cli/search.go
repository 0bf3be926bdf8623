package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workmesh/talentrag/internal/config"
	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/retrieval"
)

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search one or more content domains",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().StringSlice("domains", []string{string(domain.DomainJob)}, "Domains to search (job, company, learning_resource, faq)")
	cmd.Flags().Int("limit", 0, "Maximum results per domain (0 = default)")
	cmd.Flags().Int("total-limit", 0, "Maximum merged results (0 = default)")

	cmd.Flags().String("location", "", "Filter job or company results by location")
	cmd.Flags().String("employment-type", "", "Filter job results by employment type")
	cmd.Flags().String("company", "", "Filter job results by company name")
	cmd.Flags().String("industry", "", "Filter company results by industry")
	cmd.Flags().String("provider", "", "Filter learning results by provider")
	cmd.Flags().String("skill-level", "", "Filter learning results by skill level")
	cmd.Flags().String("category", "", "Filter FAQ results by category")
	cmd.Flags().StringSlice("tags", nil, "Filter results by tags")

	return cmd
}

// searchFilterFlags collects the facet flags of the search command before
// they are translated into one domain's typed search options.
type searchFilterFlags struct {
	location       string
	employmentType string
	company        string
	industry       string
	provider       string
	skillLevel     string
	category       string
	tags           []string
}

func (f searchFilterFlags) isZero() bool {
	return f.location == "" && f.employmentType == "" && f.company == "" &&
		f.industry == "" && f.provider == "" && f.skillLevel == "" &&
		f.category == "" && len(f.tags) == 0
}

type facetFlag struct {
	name  string
	value string
}

func rejectFacets(d domain.SearchDomain, facets ...facetFlag) error {
	for _, facet := range facets {
		if facet.value != "" {
			return fmt.Errorf("flag --%s does not apply to domain %s", facet.name, d)
		}
	}
	return nil
}

// filterFor translates the collected flags into the typed search options
// of one domain, rejecting flags the domain has no facet for.
func (f searchFilterFlags) filterFor(d domain.SearchDomain) (domain.Filter, error) {
	switch d {
	case domain.DomainJob:
		if err := rejectFacets(d,
			facetFlag{"industry", f.industry},
			facetFlag{"provider", f.provider},
			facetFlag{"skill-level", f.skillLevel},
			facetFlag{"category", f.category},
		); err != nil {
			return nil, err
		}
		return retrieval.JobSearchOptions{
			Location:       f.location,
			EmploymentType: f.employmentType,
			Company:        f.company,
			Tags:           f.tags,
		}.Filter(), nil
	case domain.DomainCompany:
		if err := rejectFacets(d,
			facetFlag{"employment-type", f.employmentType},
			facetFlag{"company", f.company},
			facetFlag{"provider", f.provider},
			facetFlag{"skill-level", f.skillLevel},
			facetFlag{"category", f.category},
		); err != nil {
			return nil, err
		}
		return retrieval.CompanySearchOptions{
			Industry: f.industry,
			Location: f.location,
			Tags:     f.tags,
		}.Filter(), nil
	case domain.DomainLearning:
		if err := rejectFacets(d,
			facetFlag{"location", f.location},
			facetFlag{"employment-type", f.employmentType},
			facetFlag{"company", f.company},
			facetFlag{"industry", f.industry},
			facetFlag{"category", f.category},
		); err != nil {
			return nil, err
		}
		return retrieval.LearningSearchOptions{
			Provider:   f.provider,
			SkillLevel: f.skillLevel,
			Tags:       f.tags,
		}.Filter(), nil
	case domain.DomainFAQ:
		if err := rejectFacets(d,
			facetFlag{"location", f.location},
			facetFlag{"employment-type", f.employmentType},
			facetFlag{"company", f.company},
			facetFlag{"industry", f.industry},
			facetFlag{"provider", f.provider},
			facetFlag{"skill-level", f.skillLevel},
		); err != nil {
			return nil, err
		}
		return retrieval.FAQSearchOptions{
			Category: f.category,
			Tags:     f.tags,
		}.Filter(), nil
	}
	return nil, domain.ErrUnknownDomain
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rawDomains, _ := cmd.Flags().GetStringSlice("domains")
	domains := make([]domain.SearchDomain, 0, len(rawDomains))
	for _, raw := range rawDomains {
		d := domain.SearchDomain(raw)
		if !domain.IsValidSearchDomain(d) {
			return fmt.Errorf("unknown domain %q", raw)
		}
		domains = append(domains, d)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	totalLimit, _ := cmd.Flags().GetInt("total-limit")

	ff := searchFilterFlags{}
	ff.location, _ = cmd.Flags().GetString("location")
	ff.employmentType, _ = cmd.Flags().GetString("employment-type")
	ff.company, _ = cmd.Flags().GetString("company")
	ff.industry, _ = cmd.Flags().GetString("industry")
	ff.provider, _ = cmd.Flags().GetString("provider")
	ff.skillLevel, _ = cmd.Flags().GetString("skill-level")
	ff.category, _ = cmd.Flags().GetString("category")
	ff.tags, _ = cmd.Flags().GetStringSlice("tags")

	var filter domain.Filter
	if !ff.isZero() {
		if len(domains) != 1 {
			return fmt.Errorf("filter flags require exactly one domain, got %d", len(domains))
		}
		var err error
		filter, err = ff.filterFor(domains[0])
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if limit <= 0 {
		limit = cfg.SearchLimit
	}
	if totalLimit <= 0 {
		totalLimit = cfg.TotalSearchLimit
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := domain.RetrieveOptions{Limit: limit, Filter: filter}
	result, err := app.Orchestrator.Retrieve(ctx, strings.Join(args, " "), domains, opts, totalLimit)
	if err != nil {
		return err
	}

	if len(result.Merged) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, chunk := range result.Merged {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, chunk.Score, chunk.ID)
		fmt.Printf("    %s\n", firstLineOf(chunk.Content))
	}
	return nil
}

func firstLineOf(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	const max = 120
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}
