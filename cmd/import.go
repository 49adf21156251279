package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/cache"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import students, courses and graded attempts from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		ctx := cmd.Context()

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.ImportFile(ctx, path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		// Imported attempts make cached profiles stale.
		c, err := cache.Open(ctx, cfg.RedisURL, cachePrefix)
		if err != nil {
			logger.Warn("profile cache unavailable, skipping invalidation", "error", err)
		} else {
			defer c.Close()
			if err := c.InvalidatePattern(ctx, "profile:*"); err != nil {
				logger.Warn("invalidate cached profiles", "error", err)
			}
		}

		fmt.Printf("Imported %d students, %d courses, %d attempts.\n",
			stats.Students, stats.Courses, stats.Attempts)
		return nil
	},
}

func init() {
	importCmd.Flags().String("file", "", "Fixture file with students, courses and attempts")
	_ = importCmd.MarkFlagRequired("file")
}
