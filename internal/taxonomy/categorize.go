package taxonomy

import (
	"fmt"
	"strings"
)

// confidenceThreshold is the minimum additive score a built-in category
// match needs before it's trusted over falling back to an AI suggestion
// or the reserved Other category.
const confidenceThreshold = 0.5

// Rule is a user-defined URL-pattern-or-tag rule that short-circuits
// scoring entirely when it matches.
type Rule struct {
	Type         string // "url_pattern" | "tag"
	Pattern      string
	CategoryName string
}

// Input is everything Categorize needs to score one bookmark.
type Input struct {
	URL           string
	Title         string
	Tags          []string
	AICategory    string   // the Enrichment Agent's suggested category, if any
	Rules         []Rule   // the user's custom categorization rules
	Categories    []string // names already in the user's category list
	KnownTaxonomy []string // the fixed default taxonomy names
}

// Result is Categorize's verdict for one bookmark.
type Result struct {
	CategoryName string
	Confidence   float64
	Reason       string
	// NeedsCreate is true when CategoryName isn't in Input.Categories yet
	// and the caller must find-or-create it before writing category_id.
	NeedsCreate bool
}

// Categorize scores a bookmark against the user's category list per spec
// §4.6.4: custom rules short-circuit first, then additive scoring across
// AI-category match, tag overlap, URL pattern, and title keyword signals,
// falling back to a known-taxonomy AI suggestion or the reserved Other
// category when nothing scores high enough.
func Categorize(in Input) Result {
	if result, ok := matchRules(in); ok {
		return result
	}

	candidates := dedupe(in.Categories)

	var best Result
	for _, category := range candidates {
		score, reasons := scoreCategory(in, category)
		if score > best.Confidence {
			best = Result{
				CategoryName: category,
				Confidence:   score,
				Reason:       strings.Join(reasons, "; "),
			}
		}
	}

	if best.Confidence >= confidenceThreshold {
		best.NeedsCreate = !contains(in.Categories, best.CategoryName)
		return best
	}

	if in.AICategory != "" && contains(in.KnownTaxonomy, in.AICategory) {
		return Result{
			CategoryName: in.AICategory,
			Confidence:   0.7,
			Reason:       "AI suggested a known taxonomy category below the scoring threshold",
			NeedsCreate:  !contains(in.Categories, in.AICategory),
		}
	}

	return Result{
		CategoryName: OtherCategoryName,
		Confidence:   0.3,
		Reason:       "no confident match",
		NeedsCreate:  !contains(in.Categories, OtherCategoryName),
	}
}

// OtherCategoryName is the reserved fallback category.
const OtherCategoryName = "Other"

func matchRules(in Input) (Result, bool) {
	urlLower := strings.ToLower(in.URL)
	for _, rule := range in.Rules {
		if rule.Type == "url_pattern" && rule.Pattern != "" && strings.Contains(urlLower, strings.ToLower(rule.Pattern)) {
			return Result{CategoryName: rule.CategoryName, Confidence: 0.9, Reason: "custom URL rule matched"}, true
		}
	}
	for _, tag := range in.Tags {
		for _, rule := range in.Rules {
			if rule.Type == "tag" && strings.EqualFold(tag, rule.Pattern) {
				return Result{CategoryName: rule.CategoryName, Confidence: 0.85, Reason: "custom tag rule matched"}, true
			}
		}
	}
	return Result{}, false
}

func scoreCategory(in Input, category string) (float64, []string) {
	var score float64
	var reasons []string
	categoryLower := strings.ToLower(category)

	switch {
	case strings.EqualFold(in.AICategory, category):
		score += 0.5
		reasons = append(reasons, "direct AI category match")
	case in.AICategory != "" && (strings.Contains(categoryLower, strings.ToLower(in.AICategory)) ||
		strings.Contains(strings.ToLower(in.AICategory), categoryLower)):
		score += 0.3
		reasons = append(reasons, "partial AI category match")
	}

	if overlap := tagOverlap(in.Tags, categoryLower); overlap > 0 {
		score += overlap
		reasons = append(reasons, fmt.Sprintf("tag overlap (+%.2f)", overlap))
	}

	if strings.Contains(strings.ToLower(in.URL), categoryLower) {
		score += 0.2
		reasons = append(reasons, "URL keyword match")
	}

	if strings.Contains(strings.ToLower(in.Title), categoryLower) {
		score += 0.1
		reasons = append(reasons, "title keyword match")
	}

	return score, reasons
}

// tagOverlap scores how many tags relate to category, capped at 0.3.
func tagOverlap(tags []string, categoryLower string) float64 {
	var matches int
	for _, tag := range tags {
		tagLower := strings.ToLower(tag)
		if strings.Contains(categoryLower, tagLower) || strings.Contains(tagLower, categoryLower) {
			matches++
		}
	}
	overlap := float64(matches) * 0.1
	if overlap > 0.3 {
		overlap = 0.3
	}
	return overlap
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
