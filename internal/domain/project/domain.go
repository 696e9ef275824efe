package project

import "strings"

// RouteKind tells whether a route path can be dereferenced against a live origin.
type RouteKind int

const (
	RouteConcrete RouteKind = iota
	RouteTemplated
)

func (k RouteKind) String() string {
	if k == RouteTemplated {
		return "templated"
	}
	return "concrete"
}

// placeholderMarker opens a placeholder segment, e.g. /api/items/[id].
const placeholderMarker = "["

type Project struct {
	Slug    string   `json:"slug" mapstructure:"slug"`
	BaseURL string   `json:"base_url" mapstructure:"base_url"`
	Routes  []string `json:"routes" mapstructure:"routes"`
}

// Classify reports whether the route needs real parameters before it can be fetched.
func Classify(route string) RouteKind {
	if strings.Contains(route, placeholderMarker) {
		return RouteTemplated
	}
	return RouteConcrete
}

// Target joins the project's visit link with a route path.
func (p *Project) Target(route string) string {
	return strings.TrimRight(p.BaseURL, "/") + route
}

func (p *Project) HasRoute(route string) bool {
	for _, r := range p.Routes {
		if r == route {
			return true
		}
	}
	return false
}
