package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artali/council/internal/store"
	"github.com/artali/council/internal/util"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved run artifacts, newest first",
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	infos, err := store.List(cfg.Paths.RunsDir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Printf("No runs found in %s\n", cfg.Paths.RunsDir)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED (UTC)\tWINNER\tPROBLEM\tPATH")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			info.CreatedAtUTC.Format("2006-01-02 15:04:05"),
			info.WinnerProvider,
			util.Clip(info.Problem, 48),
			info.Path)
	}
	return w.Flush()
}
