package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
)

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List every known project with its status and aliases",
	}, listProjectsHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get the structured record of a project by id, alias or title",
	}, getProjectHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "resolve_project",
		Description: "Resolve an id, alias, title or free-form name to a project id",
	}, resolveProjectHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ensure_details",
		Description: "Load the project's detail document if not yet loaded and return the merged record",
	}, ensureDetailsHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "invalidate_project",
		Description: "Mark a project's details as stale so the next ensure_details re-fetches them",
	}, invalidateHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "refresh_projects",
		Description: "Discard all cached project data and re-ingest every source",
	}, refreshHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "project_stats",
		Description: "Report cache and index sizes",
	}, statsHandler(svc.Projects))

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "List recent ingestion and enrichment events, newest first",
	}, recentActivityHandler(svc.Activity))
}

func listProjectsHandler(projects ProjectService) sdkmcp.ToolHandlerFor[ListProjectsParams, ListProjectsResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, ListProjectsResult, error) {
		all := projects.All()
		out := ListProjectsResult{Projects: make([]ProjectSummary, 0, len(all))}
		for _, rec := range all {
			out.Projects = append(out.Projects, summaryFrom(rec))
		}
		return nil, out, nil
	}
}

func getProjectHandler(projects ProjectService) sdkmcp.ToolHandlerFor[QueryParams, ProjectView] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in QueryParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		id, err := projects.Lookup(in.Query)
		if err != nil {
			return nil, ProjectView{}, toolError(err)
		}
		rec := projects.Project(id)
		if rec == nil {
			return nil, ProjectView{}, toolError(project.ErrProjectNotFound)
		}
		return nil, projectViewFrom(rec), nil
	}
}

func resolveProjectHandler(projects ProjectService) sdkmcp.ToolHandlerFor[QueryParams, ResolveResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, in QueryParams) (*sdkmcp.CallToolResult, ResolveResult, error) {
		id, err := projects.Lookup(in.Query)
		if err != nil {
			return nil, ResolveResult{}, toolError(err)
		}
		return nil, ResolveResult{Query: in.Query, ID: id}, nil
	}
}

func ensureDetailsHandler(projects ProjectService) sdkmcp.ToolHandlerFor[QueryParams, ProjectView] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in QueryParams) (*sdkmcp.CallToolResult, ProjectView, error) {
		id, err := projects.Lookup(in.Query)
		if err != nil {
			return nil, ProjectView{}, toolError(err)
		}
		rec, err := projects.EnsureDetails(ctx, id)
		if err != nil {
			return nil, ProjectView{}, toolError(err)
		}
		if rec == nil {
			return nil, ProjectView{}, toolError(project.ErrProjectNotFound)
		}
		return nil, projectViewFrom(rec), nil
	}
}

func invalidateHandler(projects ProjectService) sdkmcp.ToolHandlerFor[QueryParams, InvalidateResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in QueryParams) (*sdkmcp.CallToolResult, InvalidateResult, error) {
		id, err := projects.Lookup(in.Query)
		if err != nil {
			return nil, InvalidateResult{}, toolError(err)
		}
		return nil, InvalidateResult{ID: id, Invalidated: projects.InvalidateCacheFor(ctx, id)}, nil
	}
}

func refreshHandler(projects ProjectService) sdkmcp.ToolHandlerFor[RefreshParams, StatsResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ RefreshParams) (*sdkmcp.CallToolResult, StatsResult, error) {
		if err := projects.Refresh(ctx); err != nil {
			return nil, StatsResult{}, toolError(err)
		}
		return nil, statsFrom(projects.Stats()), nil
	}
}

func statsHandler(projects ProjectService) sdkmcp.ToolHandlerFor[StatsParams, StatsResult] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, _ StatsParams) (*sdkmcp.CallToolResult, StatsResult, error) {
		return nil, statsFrom(projects.Stats()), nil
	}
}

func recentActivityHandler(svc ActivityService) sdkmcp.ToolHandlerFor[RecentActivityParams, RecentActivityResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in RecentActivityParams) (*sdkmcp.CallToolResult, RecentActivityResult, error) {
		out := RecentActivityResult{Entries: []ActivityView{}}
		if svc == nil {
			return nil, out, nil
		}
		if in.Limit < 0 || in.Offset < 0 {
			return nil, RecentActivityResult{}, toolError(activity.ErrInvalidInput)
		}

		opts := activity.ListActivityOptions{
			ProjectID: in.ProjectID,
			Limit:     in.Limit,
			Offset:    in.Offset,
		}
		if in.Type != "" {
			t := activity.ActivityType(in.Type)
			opts.ActivityType = &t
		}

		entries, err := svc.GetRecentActivity(ctx, getSessionID(ctx), opts)
		if err != nil {
			return nil, RecentActivityResult{}, toolError(err)
		}
		for _, e := range entries {
			out.Entries = append(out.Entries, activityViewFrom(e))
		}
		return nil, out, nil
	}
}
