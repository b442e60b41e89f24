package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `statusboard tracks project status documents pulled from source repositories.

Each project is a record with an id (slug of its title), a title, aliases, an overview,
a status (phase + progress), feature lists and a technical stack.

Workflow:
1) Browse: list_projects, or resolve_project to map a nickname, title or id to an id.
2) Read: get_project returns the structured record.
3) Enrich: ensure_details loads the project's detail document once and merges it in.
   Empty lists in the detail document never overwrite populated ones.
4) Reset: invalidate_project forces the next ensure_details to re-fetch;
   refresh_projects re-ingests every source.
5) Inspect: project_stats and recent_activity.

Docs:
- statusboard://docs/index
- statusboard://docs/resolution
- statusboard://docs/documents
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "statusboard://docs/index",
		Name:        "docs_index",
		Title:       "statusboard docs index",
		Description: "Entry point: what the tools do and what to read next.",
		Content: `# statusboard docs

## Tools

| Tool | Use |
|---|---|
| ` + "`list_projects`" + ` | Every project in the flat legacy shape, ordered by id |
| ` + "`get_project`" + ` | One structured record by id, alias or title |
| ` + "`resolve_project`" + ` | Map any query to a project id |
| ` + "`ensure_details`" + ` | Load and merge the detail document (at most once) |
| ` + "`invalidate_project`" + ` | Mark details stale so the next ensure re-fetches |
| ` + "`refresh_projects`" + ` | Drop all cached data and re-ingest |
| ` + "`project_stats`" + ` | Cache and index sizes |
| ` + "`recent_activity`" + ` | Ingestion and enrichment events |

## Read next

- ` + "`statusboard://docs/resolution`" + `: how queries become ids.
- ` + "`statusboard://docs/documents`" + `: what a status document may contain.
`,
	},
	{
		URI:         "statusboard://docs/resolution",
		Name:        "docs_resolution",
		Title:       "Query resolution",
		Description: "Order in which ids, aliases, titles and slugs are tried.",
		Content: `# Query resolution

A query is trimmed, then tried in order:

1. exact id
2. exact alias (source names and configured nicknames)
3. exact title
4. slug of the query against ids, then against aliases

Slugs are lowercase ASCII: accents are folded, emoji dropped, and runs of anything
else collapse to a single hyphen. "At Home DIY Project Statistics & Status" becomes
` + "`at-home-diy-project-statistics-status`" + `.

Ids always resolve to themselves, and so do their slugs.
`,
	},
	{
		URI:         "statusboard://docs/documents",
		Name:        "docs_documents",
		Title:       "Status documents",
		Description: "Sections and labels recognised in project documents.",
		Content: `# Status documents

The first level-1 heading is the title. Level-2 headings start sections; emoji and bold
markers in headings are ignored.

Recognised sections: Project Overview, Project Status, Key Features, Technical Stack,
Completed Features, In Progress, Pending Tasks (and common synonyms).

Labels work anywhere in the text when a section is missing:
` + "`Status:`" + `, ` + "`Phase:`" + `, ` + "`Progress: 40%`" + `, ` + "`Last Updated:`" + `.

Progress is clamped to 0-100. List items shorter than four characters are ignored.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
