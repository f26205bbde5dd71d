package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tripflow/internal/ai"
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "AI-assisted planning and travel Q&A",
}

var aiPlanCmd = &cobra.Command{
	Use:   "plan <destination>",
	Short: "Generate an itinerary with AI",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIPlan,
}

var aiAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a travel question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAIAsk,
}

var aiRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Get destination recommendations",
	Args:  cobra.NoArgs,
	RunE:  runAIRecommend,
}

var aiOptimizeCmd = &cobra.Command{
	Use:   "optimize <plan-id>",
	Short: "Optimize an existing plan with AI",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIOptimize,
}

var aiTipsCmd = &cobra.Command{
	Use:   "tips <destination>",
	Short: "Get travel tips for a destination",
	Args:  cobra.ExactArgs(1),
	RunE:  runAITips,
}

var aiDescribeCmd = &cobra.Command{
	Use:   "describe <destination>",
	Short: "Generate a destination description",
	Args:  cobra.ExactArgs(1),
	RunE:  runAIDescribe,
}

var (
	aiDays         int
	aiBudget       int
	aiTravelers    int
	aiInterests    []string
	aiStartDate    string
	aiSave         bool
	aiSeason       string
	aiRequirements string
	aiInfo         string
)

func init() {
	rootCmd.AddCommand(aiCmd)
	aiCmd.AddCommand(aiPlanCmd, aiAskCmd, aiRecommendCmd, aiOptimizeCmd, aiTipsCmd, aiDescribeCmd)

	aiCmd.PersistentFlags().String("ai-api-key", "", "AI API key (recommend using env: TRIPFLOW_AI_API_KEY)")
	_ = viper.BindPFlag("ai.api_key", aiCmd.PersistentFlags().Lookup("ai-api-key"))

	aiPlanCmd.Flags().IntVar(&aiDays, "days", 3, "trip length in days")
	aiPlanCmd.Flags().IntVar(&aiBudget, "budget", 0, "budget in yuan")
	aiPlanCmd.Flags().IntVar(&aiTravelers, "travelers", 1, "number of travelers")
	aiPlanCmd.Flags().StringSliceVar(&aiInterests, "interests", nil, "interests, e.g. 美食,自然")
	aiPlanCmd.Flags().StringVar(&aiStartDate, "start-date", "", "start date (YYYY-MM-DD)")
	aiPlanCmd.Flags().BoolVar(&aiSave, "save", false, "save the generated plan (requires login)")

	aiRecommendCmd.Flags().StringSliceVar(&aiInterests, "interests", nil, "preferences, e.g. 海岛,历史")
	aiRecommendCmd.Flags().IntVar(&aiBudget, "budget", 0, "budget in yuan")
	aiRecommendCmd.Flags().StringVar(&aiSeason, "season", "", "travel season")

	aiOptimizeCmd.Flags().StringVar(&aiRequirements, "requirements", "", "optimization requirements, e.g. 压缩预算")

	aiTipsCmd.Flags().IntVar(&aiDays, "days", 0, "trip length in days")
	aiTipsCmd.Flags().StringVar(&aiSeason, "season", "", "travel season")

	aiDescribeCmd.Flags().StringVar(&aiInfo, "info", "", "known facts about the destination")
}

func runAIPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.PlanItinerary(cmd.Context(), &ai.PlanRequest{
		Destination: args[0],
		Days:        aiDays,
		Budget:      aiBudget,
		Travelers:   aiTravelers,
		Interests:   aiInterests,
		StartDate:   aiStartDate,
	}, aiSave)

	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	if result.ErrMessage != "" {
		fmt.Println("Warning:", result.ErrMessage)
	}
	if result.SavedPlan != nil {
		fmt.Println("Saved plan:", result.SavedPlan.ID)
	}
	return printJSON(result.Plan)
}

func runAIAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.AskQuestion(cmd.Context(), strings.Join(args, " "))
	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	fmt.Println(result.Content)
	return nil
}

func runAIRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.RecommendDestinations(cmd.Context(), aiInterests, aiBudget, aiSeason)
	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	fmt.Println(result.Content)
	return nil
}

func runAIOptimize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.OptimizeItinerary(cmd.Context(), args[0], aiRequirements)
	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	fmt.Println(result.Content)
	return nil
}

func runAITips(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.TravelTips(cmd.Context(), args[0], aiDays, aiSeason)
	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	fmt.Println(result.Content)
	return nil
}

func runAIDescribe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	svc, err := a.aiService(cmd.Context())
	if err != nil {
		return err
	}

	result := svc.DestinationDescription(cmd.Context(), args[0], aiInfo)
	if !result.Success {
		return errors.New(result.ErrMessage)
	}
	fmt.Println(result.Content)
	return nil
}
