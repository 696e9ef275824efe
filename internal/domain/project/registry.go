package project

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidProject = errors.New("invalid project configuration")

// Registry is the immutable, process-wide view of the monitored projects.
type Registry struct {
	ordered []*Project
	bySlug  map[string]*Project
}

var _ Lookup = (*Registry)(nil)

func NewRegistry(projects []Project) (*Registry, error) {
	r := &Registry{
		ordered: make([]*Project, 0, len(projects)),
		bySlug:  make(map[string]*Project, len(projects)),
	}
	for i := range projects {
		p := projects[i]
		if p.Slug == "" {
			return nil, fmt.Errorf("%w: project %d has no slug", ErrInvalidProject, i)
		}
		if _, dup := r.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("%w: duplicate slug %q", ErrInvalidProject, p.Slug)
		}
		u, err := url.Parse(p.BaseURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
			return nil, fmt.Errorf("%w: %s base_url must be an absolute http(s) url", ErrInvalidProject, p.Slug)
		}
		for _, route := range p.Routes {
			if !strings.HasPrefix(route, "/") {
				return nil, fmt.Errorf("%w: %s route %q must start with /", ErrInvalidProject, p.Slug, route)
			}
		}
		p.Routes = append([]string(nil), p.Routes...)
		r.ordered = append(r.ordered, &p)
		r.bySlug[p.Slug] = &p
	}
	return r, nil
}

func (r *Registry) Get(slug string) (*Project, bool) {
	p, ok := r.bySlug[slug]
	return p, ok
}

func (r *Registry) All() []*Project {
	return append([]*Project(nil), r.ordered...)
}

// Hostnames returns the lower-cased hostnames of every project's base URL.
func (r *Registry) Hostnames() []string {
	seen := make(map[string]struct{}, len(r.ordered))
	out := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		u, err := url.Parse(p.BaseURL)
		if err != nil {
			continue
		}
		h := strings.ToLower(u.Hostname())
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
