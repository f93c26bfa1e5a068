// Package catalog defines core types shared across subsystems.
package catalog

import "encoding/json"

// Kind distinguishes the two phases of the crawl request graph.
type Kind string

// Intent kinds carried on the queue.
const (
	KindList   Kind = "list"
	KindDetail Kind = "detail"
)

// ListContext travels with a list-page request from creation to its
// response handler. It is read-only once created.
type ListContext struct {
	CategorySlug string
	Page         int
}

// DetailContext carries the canonical product URL from the list phase.
// The detail API response does not echo this URL, so it rides out-of-band.
type DetailContext struct {
	ProductURL string
}

// Intent is one pending fetch produced by a handler and consumed by the
// worker pool. Exactly one of List/Detail is meaningful, selected by Kind.
type Intent struct {
	URL    string
	Kind   Kind
	List   ListContext
	Detail DetailContext
}

// Category is one seed of the crawl: a slug plus the human-facing
// catalog URL it was derived from.
type Category struct {
	Slug      string
	SourceURL string
}

// ListEnvelope is the consumed shape of a list-page response.
type ListEnvelope struct {
	Results []ListEntry `json:"results"`
	Meta    *ListMeta   `json:"meta"`
}

// ListEntry is one product summary on a list page.
type ListEntry struct {
	Slug       string `json:"slug"`
	ProductURL string `json:"product_url"`
}

// ListMeta holds the pagination flag of a list response.
type ListMeta struct {
	HasMorePages bool `json:"has_more_pages"`
}

// DetailEnvelope wraps the product object of a detail response. Results is
// kept raw so an absent or non-object value can be told apart from a
// decodable product.
type DetailEnvelope struct {
	Results json.RawMessage `json:"results"`
}

// Product is the consumed shape of one detail record. Slices stay nil when
// the source field is absent, which the extractor treats differently from
// present-but-empty.
type Product struct {
	UUID              string             `json:"uuid"`
	Name              string             `json:"name"`
	New               bool               `json:"new"`
	GiftPackage       bool               `json:"gift_package"`
	DescriptionBlocks []DescriptionBlock `json:"description_blocks"`
	Category          *ProductCategory   `json:"category"`
	Price             float64            `json:"price"`
	PrevPrice         float64            `json:"prev_price"`
	QuantityTotal     int                `json:"quantity_total"`
	ImageURL          string             `json:"image_url"`
	TextBlocks        []TextBlock        `json:"text_blocks"`
	VendorCode        string             `json:"vendor_code"`
	FilterLabels      []FilterLabel      `json:"filter_labels"`
}

// DescriptionBlock is one attribute block of a detail record.
type DescriptionBlock struct {
	Code   string       `json:"code"`
	Values []BlockValue `json:"values"`
}

// BlockValue is one value inside a description block.
type BlockValue struct {
	Name string `json:"name"`
}

// ProductCategory is the category subtree of a detail record.
type ProductCategory struct {
	Name   string           `json:"name"`
	Parent *ProductCategory `json:"parent"`
}

// TextBlock carries free-form marketing copy.
type TextBlock struct {
	Content string `json:"content"`
}

// FilterLabel is one filterable attribute of the product.
type FilterLabel struct {
	Filter string `json:"filter"`
	Title  string `json:"title"`
}

// Record is the normalized output, one per product. Every field holds a
// concrete value or an explicit neutral one; only the metadata "article"
// key may be absent.
type Record struct {
	Timestamp     int64             `json:"timestamp"`
	RPC           string            `json:"RPC"`
	URL           string            `json:"url"`
	Title         string            `json:"title"`
	MarketingTags []string          `json:"marketing_tags"`
	Brand         string            `json:"brand"`
	Section       []string          `json:"section"`
	PriceData     PriceData         `json:"price_data"`
	Stock         Stock             `json:"stock"`
	Assets        Assets            `json:"assets"`
	Metadata      map[string]string `json:"metadata"`
	Variants      int               `json:"variants"`
}

// PriceData holds the normalized price pair and sale tag.
type PriceData struct {
	Current  float64 `json:"current"`
	Original float64 `json:"original"`
	SaleTag  string  `json:"sale_tag"`
}

// Stock holds availability data.
type Stock struct {
	InStock bool `json:"in_stock"`
	Count   int  `json:"count"`
}

// Assets holds image and media references. The list fields are fixed
// single-empty-string placeholders; the source API's richer asset data is
// deliberately not consumed.
type Assets struct {
	MainImage string   `json:"main_image"`
	SetImages []string `json:"set_images"`
	View360   []string `json:"view360"`
	Video     []string `json:"video"`
}
