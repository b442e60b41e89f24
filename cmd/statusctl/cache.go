package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "cache",
	Short:   "List cached projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), a.Projects.All())
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tDETAILS\tTITLE")
		for _, rec := range a.Projects.Structured() {
			fmt.Fprintf(tw, "%s\t%s\t%d%%\t%t\t%s\n", rec.ID, rec.Status.Phase, rec.Status.Progress, rec.DetailsLoaded, rec.Title)
		}
		return tw.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:     "show <query>",
	GroupID: "cache",
	Short:   "Show one project by id, alias or title",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Projects.Lookup(args[0])
		if err != nil {
			return err
		}
		if legacy, _ := cmd.Flags().GetBool("legacy"); legacy {
			return writeJSON(cmd.OutOrStdout(), a.Projects.GetProjectData(id))
		}
		return writeJSON(cmd.OutOrStdout(), a.Projects.Project(id))
	},
}

var detailsCmd = &cobra.Command{
	Use:     "details <query>",
	GroupID: "cache",
	Short:   "Load a project's detail document if needed and show the merged record",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Projects.Lookup(args[0])
		if err != nil {
			return err
		}
		if force, _ := cmd.Flags().GetBool("force"); force {
			a.Projects.InvalidateCacheFor(commandContext(cmd), id)
		}
		rec, err := a.Projects.EnsureDetails(commandContext(cmd), id)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), rec)
	},
}

var invalidateCmd = &cobra.Command{
	Use:     "invalidate <query>",
	GroupID: "cache",
	Short:   "Mark a project's details as stale",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Projects.Lookup(args[0])
		if err != nil {
			return err
		}
		a.Projects.InvalidateCacheFor(commandContext(cmd), id)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", id)
		return err
	},
}

var refreshCmd = &cobra.Command{
	Use:     "refresh",
	GroupID: "cache",
	Short:   "Discard the cache and re-ingest every source",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Projects.Refresh(commandContext(cmd)); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), a.Projects.Stats())
	},
}

var statsCmd = &cobra.Command{
	Use:     "stats",
	GroupID: "cache",
	Short:   "Show cache and index sizes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return writeJSON(cmd.OutOrStdout(), a.Projects.Stats())
	},
}

var activityCmd = &cobra.Command{
	Use:     "activity",
	GroupID: "cache",
	Short:   "Show recent ingestion and enrichment events",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		projectID, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := a.Activity.GetRecentActivity(commandContext(cmd), a.SessionID, activity.ListActivityOptions{
			ProjectID: projectID,
			Limit:     limit,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tTYPE\tPROJECT\tSUMMARY")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.ActivityType, e.ProjectID, e.Summary)
		}
		return tw.Flush()
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "print records in the legacy JSON shape")
	showCmd.Flags().Bool("legacy", false, "print the legacy flat shape")
	detailsCmd.Flags().Bool("force", false, "invalidate first so the document is fetched again")
	activityCmd.Flags().String("project", "", "only events for this project id")
	activityCmd.Flags().Int("limit", activity.DefaultListLimit, "maximum events to show")

	rootCmd.AddCommand(listCmd, showCmd, detailsCmd, invalidateCmd, refreshCmd, statsCmd, activityCmd)
}
