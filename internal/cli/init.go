package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aalvaropc/kipu/internal/infra/fsworkspace"
	"github.com/aalvaropc/kipu/internal/usecase"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a Kipu workspace with sample pipelines and documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			uc := usecase.NewInitWorkspace(fsworkspace.NewInitializer())
			if err := uc.Execute(abs, force); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Initialized Kipu workspace at %s\n", abs)
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "Overwrite existing sample files")
	return c
}
