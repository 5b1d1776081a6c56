// Package trades resolves the construction trades (and product groups) a
// permit implies, and scores each trade as a lead.
package trades

import (
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/permit-cli/internal/model"
	"github.com/sells-group/permit-cli/internal/phase"
	"github.com/sells-group/permit-cli/internal/reference"
	"github.com/sells-group/permit-cli/internal/scorer"
)

// Classifier maps permits to trade matches. It is safe for concurrent use.
type Classifier struct {
	tables *reference.Tables
	scorer *scorer.Scorer
	now    func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock sets the clock used for phase and lead-score calculations.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

// New creates a trade Classifier. A nil scorer uses the default constants.
func New(t *reference.Tables, s *scorer.Scorer, opts ...Option) *Classifier {
	if s == nil {
		s = scorer.Default()
	}
	c := &Classifier{tables: t, scorer: s, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

var (
	tagPrefixes = []string{model.PrefixNew, model.PrefixAlter, "sys:", "scale:", "exp:"}
	houseplexRe = regexp.MustCompile(`^houseplex-\d+-unit$`)
)

// NormalizeTag strips a work-type or family prefix from a scope tag and
// collapses houseplex unit counts, yielding the matrix lookup key.
func NormalizeTag(tag string) string {
	key := strings.ToLower(strings.TrimSpace(tag))
	for _, prefix := range tagPrefixes {
		if strings.HasPrefix(key, prefix) {
			key = key[len(prefix):]
			break
		}
	}
	if houseplexRe.MatchString(key) {
		return "houseplex"
	}
	return key
}

type candidate struct {
	tier       model.Tier
	confidence float64
}

// candidates holds the running best match per trade slug.
type candidates map[string]candidate

// keep records a match unless a higher-confidence one exists. Ties go to
// the more direct tier.
func (cs candidates) keep(slug string, tier model.Tier, confidence float64) {
	cur, ok := cs[slug]
	if !ok || confidence > cur.confidence || (confidence == cur.confidence && tier < cur.tier) {
		cs[slug] = candidate{tier: tier, confidence: confidence}
	}
}

// ClassifyTrades returns the trade matches for a permit and its scope tags,
// ordered by trade sort order. The result is never empty unless a work
// exclusion removes every trade, fallback included.
func (c *Classifier) ClassifyTrades(p *model.Permit, tags []string) []model.TradeMatch {
	cands := c.directMatches(p)

	allow, narrow := c.tables.NarrowScope(model.PermitCode(p.PermitNum))
	if !narrow {
		for slug, cand := range c.tagMatches(tags) {
			cands.keep(slug, cand.tier, cand.confidence)
		}
	}

	if len(cands) == 0 {
		cands = c.fallback(nil)
	}

	if narrow {
		cands = c.restrict(cands, allow)
	} else if ex, ok := c.tables.WorkExclusion(p.Work); ok {
		cands = exclude(cands, ex.Exclude)
		if len(cands) == 0 {
			cands = exclude(c.fallback(nil), ex.Exclude)
		}
	}

	return c.matches(p, cands)
}

// directMatches applies the active tier-1 rules.
func (c *Classifier) directMatches(p *model.Permit) candidates {
	cands := make(candidates)
	for _, r := range c.tables.Rules() {
		if !r.Active || r.Tier != model.TierDirect {
			continue
		}
		if !r.Matches(p.FieldValue(r.MatchField)) {
			continue
		}
		conf := r.Confidence
		if conf <= 0 {
			conf = c.tables.DirectConfidence()
		}
		cands.keep(r.TradeSlug, model.TierDirect, conf)
	}
	return cands
}

// tagMatches looks each normalized tag up in the tag-trade matrix. Unknown
// tags contribute nothing.
func (c *Classifier) tagMatches(tags []string) candidates {
	cands := make(candidates)
	for _, tag := range tags {
		for _, w := range c.tables.TagTrades(NormalizeTag(tag)) {
			cands.keep(w.Trade, model.TierTag, w.Confidence)
		}
	}
	return cands
}

// fallback returns the fallback trade set, or only the given slugs when
// only is non-nil.
func (c *Classifier) fallback(only []string) candidates {
	slugs := c.tables.Fallback()
	if only != nil {
		slugs = only
	}
	cands := make(candidates, len(slugs))
	for _, slug := range slugs {
		cands[slug] = candidate{tier: model.TierFallback, confidence: c.tables.FallbackConfidence()}
	}
	return cands
}

// restrict keeps only allow-listed trades. When nothing survives, the
// allow-list itself is used at fallback confidence.
func (c *Classifier) restrict(cands candidates, allow []string) candidates {
	out := make(candidates, len(allow))
	for _, slug := range allow {
		if cand, ok := cands[slug]; ok {
			out[slug] = cand
		}
	}
	if len(out) == 0 {
		return c.fallback(allow)
	}
	return out
}

func exclude(cands candidates, slugs []string) candidates {
	for _, slug := range slugs {
		delete(cands, slug)
	}
	return cands
}

// matches materializes candidates in catalog order with phase, activity,
// and lead score.
func (c *Classifier) matches(p *model.Permit, cands candidates) []model.TradeMatch {
	now := c.now()
	ph := phase.ForPermit(p, now)

	out := make([]model.TradeMatch, 0, len(cands))
	for _, trade := range c.tables.Trades() {
		cand, ok := cands[trade.Slug]
		if !ok {
			continue
		}
		m := model.TradeMatch{
			Key:        p.Key(),
			TradeID:    trade.ID,
			TradeSlug:  trade.Slug,
			TradeName:  trade.Name,
			Tier:       cand.tier,
			Confidence: cand.confidence,
			IsActive:   c.tables.IsActive(ph, trade.Slug),
			Phase:      ph,
		}
		m.LeadScore = c.scorer.Score(p, m, now)
		out = append(out, m)
	}
	return out
}
