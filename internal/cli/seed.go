package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stockroom/internal/catalog"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.cue|catalog.yaml>",
		Short: "Create products from a catalog file",
		Long: `Create the products listed in a CUE or YAML catalog. Products whose id
already exists are skipped, so seeding twice is harmless.

Example:
  stockroom seed --db ./stockroom.db ./catalog.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := catalog.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load catalog", err)
			}
			return withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
				res, err := s.engine.SeedProducts(cmd.Context(), products)
				if err != nil {
					return err
				}
				return s.out.Success(res, fmt.Sprintf("Seeded %d products (%d already present)\n", len(res.Created), len(res.Skipped)))
			})(cmd, args)
		},
	}
}
