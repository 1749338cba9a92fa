package models

type PageType string

const (
	PageHomepage   PageType = "homepage"
	PageSinglePost PageType = "single_post"
	PagePage       PageType = "page"
	PageArchive    PageType = "archive"
	PageUnknown    PageType = "unknown"
)

// ParsePageType maps the page classification supplied by the host site
// onto one of the five known page types. "home" and "front_page" are
// accepted as homepage aliases, "single" and "post" as single_post; any
// other value is unknown.
func ParsePageType(s string) PageType {
	switch s {
	case "homepage", "home", "front_page":
		return PageHomepage
	case "single_post", "single", "post":
		return PageSinglePost
	case "page":
		return PagePage
	case "archive", "category", "tag", "author", "date":
		return PageArchive
	}
	return PageUnknown
}

// RequestContext is everything the display rules know about the current
// request.
type RequestContext struct {
	IsMobile bool
	PageType PageType
	PostID   int
	Cookies  map[string]string
}

func (c *RequestContext) Cookie(name string) (string, bool) {
	if c == nil || c.Cookies == nil {
		return "", false
	}
	v, ok := c.Cookies[name]
	return v, ok
}
