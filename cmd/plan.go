package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tripflow/internal/model/travel"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage travel plans",
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List my travel plans",
	Args:  cobra.NoArgs,
	RunE:  runPlanList,
}

var planBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse latest plans from all users",
	Args:  cobra.NoArgs,
	RunE:  runPlanBrowse,
}

var planCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a travel plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanCreate,
}

var planDetailCmd = &cobra.Command{
	Use:   "detail <plan-id>",
	Short: "Show a plan with its activities",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDetail,
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete <plan-id>",
	Short: "Delete my travel plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDelete,
}

var planDuplicateCmd = &cobra.Command{
	Use:   "duplicate <plan-id>",
	Short: "Duplicate a plan as my own",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanDuplicate,
}

var planStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show my plan statistics",
	Args:  cobra.NoArgs,
	RunE:  runPlanStats,
}

var (
	planStatus      string
	planDestination string
	planDays        int
	planBudget      float64
	planTravelers   int
	planLimit       int
)

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planListCmd, planBrowseCmd, planCreateCmd, planDetailCmd,
		planDeleteCmd, planDuplicateCmd, planStatsCmd)

	planListCmd.Flags().StringVar(&planStatus, "status", "",
		"filter by status (planned/ongoing/completed/cancelled)")

	planBrowseCmd.Flags().IntVar(&planLimit, "limit", 20, "max results")

	planCreateCmd.Flags().StringVar(&planDestination, "destination", "", "destination")
	planCreateCmd.Flags().IntVar(&planDays, "days", 0, "trip length in days")
	planCreateCmd.Flags().Float64Var(&planBudget, "budget", 0, "total budget")
	planCreateCmd.Flags().IntVar(&planTravelers, "travelers", 1, "number of travelers")
}

func runPlanList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	status := travel.PlanStatus(planStatus)
	if planStatus != "" && !status.IsValid() {
		return fmt.Errorf("invalid status: %s", planStatus)
	}

	plans, err := a.travel.MyPlans(cmd.Context(), status)
	if err != nil {
		return err
	}
	return printJSON(plans)
}

func runPlanBrowse(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	plans, err := a.travel.BrowsePlans(cmd.Context(), planLimit)
	if err != nil {
		return err
	}
	return printJSON(plans)
}

func runPlanCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	plan, err := a.travel.CreatePlan(cmd.Context(), &travel.TravelPlan{
		Title:       args[0],
		Destination: planDestination,
		Days:        planDays,
		TotalBudget: planBudget,
		Travelers:   planTravelers,
	})
	if err != nil {
		return err
	}
	return printJSON(plan)
}

func runPlanDetail(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	detail, err := a.travel.GetPlanDetail(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if detail.Degraded {
		fmt.Println("Warning: activities could not be loaded")
	}
	return printJSON(detail)
}

func runPlanDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := a.travel.DeletePlan(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Println("Plan deleted")
	return nil
}

func runPlanDuplicate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	plan, err := a.travel.DuplicatePlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(plan)
}

func runPlanStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	stats, err := a.travel.UserStats(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(stats)
}
