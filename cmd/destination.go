package cmd

import (
	"github.com/spf13/cobra"
)

var destinationCmd = &cobra.Command{
	Use:   "destination",
	Short: "Browse destinations",
}

var destinationFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured destinations",
	Args:  cobra.NoArgs,
	RunE:  runDestinationFeatured,
}

var destinationSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search destinations by keyword",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestinationSearch,
}

var destinationCategoryCmd = &cobra.Command{
	Use:   "category <category>",
	Short: "List destinations in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestinationCategory,
}

var (
	destinationLimit    int
	destinationCategory string
)

func init() {
	rootCmd.AddCommand(destinationCmd)
	destinationCmd.AddCommand(destinationFeaturedCmd, destinationSearchCmd, destinationCategoryCmd)

	destinationFeaturedCmd.Flags().IntVar(&destinationLimit, "limit", 10, "max results")
	destinationSearchCmd.Flags().StringVar(&destinationCategory, "category", "", "filter by category")
	destinationCategoryCmd.Flags().IntVar(&destinationLimit, "limit", 20, "max results")
}

func runDestinationFeatured(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	dests, err := a.travel.FeaturedDestinations(cmd.Context(), destinationLimit)
	if err != nil {
		return err
	}
	return printJSON(dests)
}

func runDestinationCategory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	dests, err := a.travel.DestinationsByCategory(cmd.Context(), args[0], destinationLimit)
	if err != nil {
		return err
	}
	return printJSON(dests)
}

func runDestinationSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	dests, err := a.travel.SearchDestinations(cmd.Context(), args[0], destinationCategory)
	if err != nil {
		return err
	}
	return printJSON(dests)
}
