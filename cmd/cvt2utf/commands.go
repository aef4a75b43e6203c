package main

import (
	"github.com/spf13/cobra"
	"github.com/stackvity/utf-converter/pkg/converter"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convert <path>",
		Aliases: []string{"cvt"},
		Short:   "Convert candidate files under path to UTF-8",
		Args:    cobra.ExactArgs(1),
		RunE:    runCommand(converter.CommandConvert),
	}
	addConvertFlags(cmd)
	return cmd
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "detect <path>",
		Aliases: []string{"det"},
		Short:   "Report the detected encoding of candidate files without modifying them",
		Args:    cobra.ExactArgs(1),
		RunE:    runCommand(converter.CommandDetect),
	}
	addSelectionFlags(cmd)
	return cmd
}

func newCleanBakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cleanbak <path>",
		Aliases: []string{"clean"},
		Short:   "Remove backup files created within the retention window",
		Long: `cleanbak removes *.` + converter.BackupExtension + ` files under path whose creation time falls
within the retention window (default ` + converter.DefaultBackupRetentionString + `). Older backups are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand(converter.CommandCleanBak),
	}
	cmd.Flags().String("retention", converter.DefaultBackupRetentionString, "Remove backups created within this window (e.g. 40m, 2h)")
	cmd.Flags().Bool("dry-run", false, "List the backups that would be removed without deleting them")
	return cmd
}

// addSelectionFlags registers the flags that choose and classify candidate files.
// Flag names align with the keys bound in internal/cli/config.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("inc", "i", converter.DefaultInclude, "File extensions to scan (comma separated, no dot)")
	cmd.Flags().StringSliceP("exc", "x", nil, "File extensions to skip; "+converter.BackupExtension+" is always skipped")
	cmd.Flags().StringArray("ignore", nil, "Gitignore-style patterns to skip (can be specified multiple times)")
	cmd.Flags().Float64("threshold", converter.DefaultConfidenceThreshold, "Minimum detector confidence (0.0-1.0) trusted for conversion")
}

// addConvertFlags registers the selection flags plus the rewrite options.
func addConvertFlags(cmd *cobra.Command) {
	addSelectionFlags(cmd)
	cmd.Flags().Int64("size-limit", converter.DefaultSizeLimitMB, "Skip files larger than this many megabytes")
	cmd.Flags().Bool("nobak", false, "Overwrite files without keeping a backup")
	cmd.Flags().Bool("skiputf", false, "Leave files already in any UTF encoding untouched")
	cmd.Flags().StringP("target", "t", converter.DefaultTarget, `Target encoding ("utf-8" or "utf-8-with-bom")`)
	cmd.Flags().BoolP("u8bom", "b", false, "Shorthand for --target utf-8-with-bom")
	cmd.Flags().Bool("keep-mtime", false, "Preserve the original modification time of converted files")
	cmd.MarkFlagsMutuallyExclusive("target", "u8bom")
}
