package api

import (
	"net/url"
	"strconv"

	"blogctl/internal/blog"
)

// ListParams are the query parameters accepted by the list endpoints. A
// zero-valued field is omitted from the request entirely: a filter at its
// "all/any" value produces the same query as no filter selected.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string

	Published   *bool
	CategoryID  string
	AuthorID    string
	Role        string
	HasPosts    *bool
	CreatedFrom string
	CreatedTo   string
}

// Values encodes the parameters for the request URL.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		v.Set("sortOrder", p.SortOrder)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Published != nil {
		v.Set("published", strconv.FormatBool(*p.Published))
	}
	if p.CategoryID != "" {
		v.Set("categoryId", p.CategoryID)
	}
	if p.AuthorID != "" {
		v.Set("authorId", p.AuthorID)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.HasPosts != nil {
		v.Set("hasPosts", strconv.FormatBool(*p.HasPosts))
	}
	if p.CreatedFrom != "" {
		v.Set("createdFrom", p.CreatedFrom)
	}
	if p.CreatedTo != "" {
		v.Set("createdTo", p.CreatedTo)
	}
	return v
}

// ParamsFromQuery maps a controller's settled query onto endpoint
// parameters. The status and has-posts filters translate from their
// tri-state UI values to booleans; "all" values stay absent.
func ParamsFromQuery(q blog.ListQuery) ListParams {
	p := ListParams{
		Page:        q.Page,
		Limit:       q.Limit,
		SortBy:      q.SortBy,
		SortOrder:   q.SortOrder,
		Search:      q.Search,
		CategoryID:  q.Filters.CategoryID,
		Role:        q.Filters.Role,
		CreatedFrom: q.Filters.CreatedFrom,
		CreatedTo:   q.Filters.CreatedTo,
	}
	switch q.Filters.Status {
	case "published":
		p.Published = boolPtr(true)
	case "draft":
		p.Published = boolPtr(false)
	}
	switch q.Filters.HasPosts {
	case "yes":
		p.HasPosts = boolPtr(true)
	case "no":
		p.HasPosts = boolPtr(false)
	}
	return p
}

func boolPtr(b bool) *bool { return &b }
