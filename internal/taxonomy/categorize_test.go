package taxonomy

import "testing"

var knownTaxonomy = []string{
	"Development", "AI/ML", "Technology", "Business", "Education",
	"News", "Entertainment", "Reference", "Tools", "Personal", "Other",
}

func TestCategorizeCustomURLRuleShortCircuits(t *testing.T) {
	result := Categorize(Input{
		URL: "https://github.com/golang/go",
		Rules: []Rule{
			{Type: "url_pattern", Pattern: "github.com", CategoryName: "Development"},
		},
		Categories:    []string{"Development", "Other"},
		KnownTaxonomy: knownTaxonomy,
	})
	if result.CategoryName != "Development" || result.Confidence != 0.9 {
		t.Fatalf("got %+v, want Development at 0.9", result)
	}
}

func TestCategorizeCustomTagRuleShortCircuits(t *testing.T) {
	result := Categorize(Input{
		URL:  "https://example.com/post",
		Tags: []string{"recipe", "cooking"},
		Rules: []Rule{
			{Type: "tag", Pattern: "cooking", CategoryName: "Personal"},
		},
		Categories:    []string{"Personal"},
		KnownTaxonomy: knownTaxonomy,
	})
	if result.CategoryName != "Personal" || result.Confidence != 0.85 {
		t.Fatalf("got %+v, want Personal at 0.85", result)
	}
}

func TestCategorizeDirectAIMatchWins(t *testing.T) {
	result := Categorize(Input{
		URL:           "https://golang.org/doc",
		Title:         "Go Documentation",
		AICategory:    "Development",
		Categories:    []string{"Development", "Other"},
		KnownTaxonomy: knownTaxonomy,
	})
	if result.CategoryName != "Development" {
		t.Fatalf("got %+v, want Development", result)
	}
	if result.Confidence < 0.5 {
		t.Fatalf("confidence %.2f below threshold", result.Confidence)
	}
	if result.NeedsCreate {
		t.Fatalf("category already exists, NeedsCreate should be false")
	}
}

func TestCategorizeFindOrCreateBelowThreshold(t *testing.T) {
	result := Categorize(Input{
		URL:           "https://news.example.com/article",
		Title:         "Breaking news",
		AICategory:    "News",
		Categories:    []string{"Development", "Other"},
		KnownTaxonomy: knownTaxonomy,
	})
	if result.CategoryName != "News" || result.Confidence != 0.7 {
		t.Fatalf("got %+v, want News at 0.7", result)
	}
	if !result.NeedsCreate {
		t.Fatalf("News isn't in the user's list yet, NeedsCreate should be true")
	}
}

func TestCategorizeFallsBackToOther(t *testing.T) {
	result := Categorize(Input{
		URL:           "https://example.com/x",
		Title:         "Untitled",
		Categories:    []string{"Development"},
		KnownTaxonomy: knownTaxonomy,
	})
	if result.CategoryName != OtherCategoryName || result.Confidence != 0.3 {
		t.Fatalf("got %+v, want Other at 0.3", result)
	}
}

func TestCategorizeTagOverlapCapped(t *testing.T) {
	score, reasons := scoreCategory(Input{
		Tags: []string{"development", "develop", "devel", "dev"},
	}, "Development")
	if score > 0.3 {
		t.Fatalf("tag overlap score %.2f exceeds cap of 0.3", score)
	}
	if len(reasons) == 0 {
		t.Fatalf("expected a reason for the tag overlap match")
	}
}
