package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildListURL constructs the list API URL for one category page.
// url.Values encodes keys in sorted order, keeping the query reproducible.
func BuildListURL(base, cityUUID, categorySlug string, page, perPage int) string {
	params := url.Values{}
	params.Set("city_uuid", cityUUID)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("root_category_slug", categorySlug)
	return fmt.Sprintf("%s/product?%s", strings.TrimRight(base, "/"), params.Encode())
}

// BuildDetailURL constructs the detail API URL for one product slug.
func BuildDetailURL(base, cityUUID, slug string) string {
	params := url.Values{}
	params.Set("city_uuid", cityUUID)
	return fmt.Sprintf("%s/product/%s?%s", strings.TrimRight(base, "/"), url.PathEscape(slug), params.Encode())
}

// CategoryFromURL derives a Category seed from a human-facing catalog URL.
// The slug is the trailing path segment.
func CategoryFromURL(raw string) (Category, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Category{}, fmt.Errorf("parse category url %q: %w", raw, err)
	}
	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return Category{}, fmt.Errorf("category url %q has no path segment", raw)
	}
	segments := strings.Split(trimmed, "/")
	slug := segments[len(segments)-1]
	return Category{Slug: slug, SourceURL: raw}, nil
}
