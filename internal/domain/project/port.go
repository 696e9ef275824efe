package project

type Lookup interface {
	Get(slug string) (*Project, bool)
	All() []*Project
}
