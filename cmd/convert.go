package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andresmejia3/labelfix/internal/hdf"
	"github.com/andresmejia3/labelfix/internal/labels"
	"github.com/andresmejia3/labelfix/internal/utils"
)

var convertCmd = &cobra.Command{
	Use:   "convert <labelfile>",
	Short: "Write the MATLAB-structure export for a label file without editing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		labelPath := args[0]

		if ext := strings.ToLower(filepath.Ext(labelPath)); ext != ".h5" {
			utils.Die("validating input", fmt.Errorf("%w: label file must be *.h5, got %s", labels.ErrInvalidInput, labelPath))
		}

		store := hdf.NewFileStore()
		table, err := store.Load(labelPath)
		if err != nil {
			utils.Die("loading label file", err)
		}

		matPath := utils.MATPath(labelPath)
		if err := store.Export(matPath, table); err != nil {
			utils.Die("writing MATLAB export", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Saved MATLAB label file: %s\n", matPath)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
