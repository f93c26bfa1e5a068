// Package orchestrator drives the two-phase crawl request graph: category
// seeds fan out to paginated list pages, list pages fan out to product detail
// pages, and each detail page yields one normalized record.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
	"github.com/pricepulse/alkoteka-crawler/internal/extract"
)

// Config pins the static request parameters for one crawl run.
type Config struct {
	BaseURL  string
	CityUUID string
	PerPage  int
}

// Orchestrator turns response bodies into follow-up fetch intents and
// normalized records. It holds no per-request state; every handler reads the
// context value carried alongside the body.
type Orchestrator struct {
	cfg Config
}

// New constructs an Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	return &Orchestrator{cfg: cfg}
}

// Seed builds the page-1 list intent for every configured category.
func (o *Orchestrator) Seed(categories []catalog.Category) []catalog.Intent {
	intents := make([]catalog.Intent, 0, len(categories))
	for _, c := range categories {
		intents = append(intents, o.listIntent(c.Slug, 1))
	}
	return intents
}

// HandleList parses one list-page body and returns the detail intents for
// its entries plus, when more pages remain, the next list intent for the
// same category. A body that is not valid JSON fails this one page only.
func (o *Orchestrator) HandleList(body []byte, lc catalog.ListContext) ([]catalog.Intent, error) {
	var envelope catalog.ListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: category %s page %d: %v",
			catalog.ErrMalformedListPayload, lc.CategorySlug, lc.Page, err)
	}

	var intents []catalog.Intent
	for _, entry := range envelope.Results {
		if entry.Slug == "" {
			continue
		}
		intents = append(intents, catalog.Intent{
			URL:    catalog.BuildDetailURL(o.cfg.BaseURL, o.cfg.CityUUID, entry.Slug),
			Kind:   catalog.KindDetail,
			Detail: catalog.DetailContext{ProductURL: entry.ProductURL},
		})
	}

	if envelope.Meta != nil && envelope.Meta.HasMorePages {
		intents = append(intents, o.listIntent(lc.CategorySlug, lc.Page+1))
	}
	return intents, nil
}

// HandleDetail parses one detail body and produces exactly one normalized
// record, stamped with the extraction-time clock reading. Failures are local
// to this one product.
func (o *Orchestrator) HandleDetail(body []byte, dc catalog.DetailContext, now time.Time) (catalog.Record, error) {
	var envelope catalog.DetailEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return catalog.Record{}, fmt.Errorf("%w: %v", catalog.ErrMalformedDetailPayload, err)
	}
	if len(envelope.Results) == 0 || string(envelope.Results) == "null" {
		return catalog.Record{}, fmt.Errorf("%w: results object absent", catalog.ErrMalformedDetailPayload)
	}
	var product catalog.Product
	if err := json.Unmarshal(envelope.Results, &product); err != nil {
		return catalog.Record{}, fmt.Errorf("%w: results object: %v", catalog.ErrMalformedDetailPayload, err)
	}
	record, err := extract.Normalize(product, dc.ProductURL, now)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("normalize product: %w", err)
	}
	return record, nil
}

func (o *Orchestrator) listIntent(slug string, page int) catalog.Intent {
	return catalog.Intent{
		URL:  catalog.BuildListURL(o.cfg.BaseURL, o.cfg.CityUUID, slug, page, o.cfg.PerPage),
		Kind: catalog.KindList,
		List: catalog.ListContext{CategorySlug: slug, Page: page},
	}
}
