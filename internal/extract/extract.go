// Package extract implements the field-normalization pipeline. Every function
// is a pure mapping from one raw product payload to output fields; no I/O and
// no state live here.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// Marketing tag labels appended for the corresponding product flags.
const (
	TagNew      = "Новинка"
	TagGiftWrap = "Подарочная упаковка"
)

const descriptionKey = "__description"

// Normalize maps one decoded product payload to the normalized record.
// productURL is the canonical source URL threaded from the list phase;
// capturedAt stamps the record with extraction wall-clock time.
func Normalize(p catalog.Product, productURL string, capturedAt time.Time) (catalog.Record, error) {
	brand, err := Brand(p)
	if err != nil {
		return catalog.Record{}, err
	}
	metadata, err := Metadata(p)
	if err != nil {
		return catalog.Record{}, err
	}
	return catalog.Record{
		Timestamp:     capturedAt.Unix(),
		RPC:           p.UUID,
		URL:           productURL,
		Title:         Title(p),
		MarketingTags: MarketingTags(p),
		Brand:         brand,
		Section:       Section(p),
		PriceData:     Price(p),
		Stock:         Stock(p),
		Assets:        Assets(p),
		Metadata:      metadata,
		Variants:      1,
	}, nil
}

// Title concatenates the base name with every non-empty filter label title,
// preserving array order.
func Title(p catalog.Product) string {
	var b strings.Builder
	b.WriteString(p.Name)
	for _, label := range p.FilterLabels {
		if label.Title == "" {
			continue
		}
		b.WriteString(", ")
		b.WriteString(label.Title)
	}
	return b.String()
}

// MarketingTags derives the ordered tag list: the new-product tag first,
// then the gift-wrap tag. No other tags exist.
func MarketingTags(p catalog.Product) []string {
	tags := []string{}
	if p.New {
		tags = append(tags, TagNew)
	}
	if p.GiftPackage {
		tags = append(tags, TagGiftWrap)
	}
	return tags
}

// Brand scans description_blocks for entries with code "brend" and takes the
// first value name of the last match. The scan does not short-circuit, so a
// later match overwrites an earlier one. A nil block list is a data-integrity
// failure for this one product.
func Brand(p catalog.Product) (string, error) {
	if p.DescriptionBlocks == nil {
		return "", fmt.Errorf("brand: %w", catalog.ErrMissingDescriptionBlocks)
	}
	brand := ""
	for _, block := range p.DescriptionBlocks {
		if block.Code != "brend" {
			continue
		}
		brand = ""
		if len(block.Values) > 0 {
			brand = block.Values[0].Name
		}
	}
	return brand, nil
}

// Section builds the ordered [parent_category_name, category_name] pair.
// The parent lookup only happens when category itself is present.
func Section(p catalog.Product) []string {
	parentName, categoryName := "", ""
	if p.Category != nil {
		categoryName = p.Category.Name
		if p.Category.Parent != nil {
			parentName = p.Category.Parent.Name
		}
	}
	return []string{parentName, categoryName}
}

// Price normalizes the price pair. has_discount means the two source fields
// differ; the percentage is int((1 - original/current) * 100), kept exactly
// as the upstream feed computes it even though original/current reads
// inverted. Truncation is toward zero and the sign is preserved.
func Price(p catalog.Product) catalog.PriceData {
	original := p.PrevPrice
	current := p.Price
	hasDiscount := original != current
	saleTag := ""
	out := original
	if hasDiscount {
		pct := int((1 - original/current) * 100)
		saleTag = fmt.Sprintf("Скидка %d%%", pct)
		out = current
	}
	return catalog.PriceData{
		Current:  out,
		Original: original,
		SaleTag:  saleTag,
	}
}

// Stock maps quantity_total to availability. An absent quantity decodes to
// zero and therefore to out-of-stock.
func Stock(p catalog.Product) catalog.Stock {
	return catalog.Stock{
		InStock: p.QuantityTotal > 0,
		Count:   p.QuantityTotal,
	}
}

// Assets maps the main image and emits the fixed placeholder lists for the
// media fields this pipeline does not consume.
func Assets(p catalog.Product) catalog.Assets {
	return catalog.Assets{
		MainImage: p.ImageURL,
		SetImages: []string{""},
		View360:   []string{""},
		Video:     []string{""},
	}
}

// Metadata builds the key-value map: the first text block's content under
// "__description", the vendor code under "article" when present, then every
// filter label keyed by its filter name. Filter labels are applied last, so
// a colliding filter key wins over the earlier entries.
func Metadata(p catalog.Product) (map[string]string, error) {
	if p.FilterLabels == nil {
		return nil, fmt.Errorf("metadata: %w", catalog.ErrMissingFilterLabels)
	}
	meta := map[string]string{descriptionKey: ""}
	if len(p.TextBlocks) > 0 {
		meta[descriptionKey] = p.TextBlocks[0].Content
	}
	if p.VendorCode != "" {
		meta["article"] = p.VendorCode
	}
	for _, label := range p.FilterLabels {
		meta[label.Filter] = label.Title
	}
	return meta, nil
}
