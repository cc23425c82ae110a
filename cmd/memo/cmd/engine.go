package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/go-memo/memo/pkg/memo"
)

// openEngine opens the project's Engine honoring the --container override,
// if set on cmd or any of its ancestors.
func openEngine(ctx context.Context, cmd *cobra.Command) (*memo.Engine, error) {
	return memo.Open(ctx, memo.Options{Container: containerOverride(cmd)})
}
