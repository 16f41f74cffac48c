package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/output/manifest"
)

// CheckCmd checks if generated files are up to date
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check if generated files are up to date",
	Long: `Check if the generated files on disk match what generate would write.

Nothing is written. Artifacts recorded in the manifest that are no longer
produced but still exist on disk count as out of date.

Exit codes:
  0 - Generated files are up to date
  1 - Generated files are out of date, or the check failed

Examples:
  declgen check                 # Verify generated files (CI)`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	p, err := openProject(cfg, false)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res, err := p.generator.Run(ctx)
	if err != nil {
		return err
	}
	if logger.ShouldOutput(Verbosity, logger.OutputErrors) {
		diag.Render(cmd.ErrOrStderr(), res.Diagnostics)
	}

	var recorded []manifest.Entry
	if p.store != nil {
		if recorded, err = p.store.Load(ctx); err != nil {
			return err
		}
	}

	result, err := p.publisher.Writer.Check(res.Report.Artifacts, recorded)
	if err != nil {
		return errors.Wrap(err, "failed to compare generated files")
	}

	if result.UpToDate {
		pterm.Success.Printfln("%d generated files are up to date", len(res.Report.Artifacts))
		if res.HasErrors() {
			return errors.New("generation reported errors")
		}
		return nil
	}

	pterm.Error.Println("Generated files are out of date.")
	for _, group := range []struct {
		title string
		files []string
	}{
		{"missing", result.Missing},
		{"different", result.Different},
		{"stale", result.Stale},
	} {
		for _, file := range group.files {
			pterm.Printfln("  %s %s", pterm.Gray(group.title+":"), file)
		}
	}

	return errors.New("generated files are out of date - run 'declgen generate' to update")
}
