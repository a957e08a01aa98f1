package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Die is the unified exit strategy for labelfix.
// It prints a formatted error box to stderr and exits non-zero. Only used on
// fatal initialization paths, before the editor window exists.
func Die(context string, err error) {
	fmt.Fprintf(os.Stderr, "\n---------------------------------------------------------\n")
	fmt.Fprintf(os.Stderr, "🚨 LABELFIX ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "---------------------------------------------------------\n")
	os.Exit(1)
}

// fixedSuffix marks a label file produced by an earlier correction session.
const fixedSuffix = "_Fixed"

// FixedLabelPath derives the incrementally-updated mirror path from the input
// label file: "<dir>/<base>_Fixed.h5". A "_Fixed" marker already present in
// the input name is stripped first, so re-opening a previous session's output
// keeps writing to the same mirror instead of stacking suffixes.
func FixedLabelPath(labelPath string) string {
	dir := filepath.Dir(filepath.Clean(labelPath))
	base := strings.TrimSuffix(filepath.Base(labelPath), filepath.Ext(labelPath))
	if i := strings.Index(base, fixedSuffix); i >= 0 {
		base = base[:i]
	}
	return filepath.Join(dir, base+fixedSuffix+".h5")
}

// MATPath derives the MATLAB export path from the input label file:
// "<dir>/<base>.mat", keeping the full input base name.
func MATPath(labelPath string) string {
	dir := filepath.Dir(filepath.Clean(labelPath))
	base := strings.TrimSuffix(filepath.Base(labelPath), filepath.Ext(labelPath))
	return filepath.Join(dir, base+".mat")
}
