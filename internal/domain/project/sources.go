package project

import (
	"slices"
	"strings"
)

const (
	// DefaultRawBaseURL serves raw repository files.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
	// DefaultBranch is used when a descriptor names no branch.
	DefaultBranch = "main"
)

// DefaultCandidates are the detail document paths probed, in order.
var DefaultCandidates = []string{"project_details.md", "ProjectDetails.md"}

// Descriptor identifies a document-bearing repository.
type Descriptor struct {
	Owner  string `json:"owner" yaml:"owner"`
	Repo   string `json:"repo" yaml:"repo"`
	Branch string `json:"branch,omitempty" yaml:"branch"`
	Path   string `json:"path,omitempty" yaml:"path"`
}

// URL builds the raw-content URL of path (or d.Path when path is empty)
// below base.
func (d Descriptor) URL(base, path string) string {
	if base == "" {
		base = DefaultRawBaseURL
	}
	if path == "" {
		path = d.Path
	}
	branch := d.Branch
	if branch == "" {
		branch = DefaultBranch
	}
	return strings.TrimRight(base, "/") + "/" + d.Owner + "/" + d.Repo + "/" + branch + "/" + strings.TrimLeft(path, "/")
}

// Source is a repository ingested by the primary pass. Name doubles as an
// alias of the resulting record.
type Source struct {
	Name string
	Descriptor
}

// DefaultCommonAliases maps well-known nicknames to record ids.
func DefaultCommonAliases() map[string]string {
	return map[string]string{
		"diyapp":          "at-home-diy-project-statistics-status",
		"businesslocalai": "businesslocalai-project-details",
	}
}

func candidatePaths(candidates []string, d Descriptor) []string {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	paths := make([]string, 0, len(candidates)+1)
	paths = append(paths, candidates...)
	if d.Path != "" && !slices.Contains(paths, d.Path) {
		paths = append(paths, d.Path)
	}
	return paths
}
