package trades

import "github.com/sells-group/permit-cli/internal/model"

// ClassifyProducts maps a permit's scope tags to product groups, in catalog
// order without duplicates.
func (c *Classifier) ClassifyProducts(p *model.Permit, tags []string) []model.ProductMatch {
	wanted := make(map[string]bool)
	for _, tag := range tags {
		for _, slug := range c.tables.TagProducts(NormalizeTag(tag)) {
			wanted[slug] = true
		}
	}

	out := make([]model.ProductMatch, 0, len(wanted))
	for _, g := range c.tables.Products() {
		if !wanted[g.Slug] {
			continue
		}
		out = append(out, model.ProductMatch{
			Key:         p.Key(),
			ProductID:   g.ID,
			ProductSlug: g.Slug,
			ProductName: g.Name,
		})
	}
	return out
}
