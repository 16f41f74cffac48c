package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/declgen/errors"
)

var generateStages bool

// GenerateCmd represents the generate command
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate source from declarations and resource tables",
	Long: `Run the pipeline once and write every artifact that changed.

declgen loads the packages named by project.packages, reads the //declgen:
directives on their declarations, aggregates resource tables into one typed
accessor per logical table and writes the generated files next to their
inputs. Files whose content did not change are not touched, and artifacts
no longer produced are deleted when output.delete_stale is set.

Examples:
  declgen generate              # Generate for the project around the working directory
  declgen generate --stages     # Also show which pipeline stages ran
  declgen generate -vv          # Debug logging`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().BoolVarP(&generateStages, "stages", "s", false, "Show executed and reused partitions per stage (implied by -vv)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	p, err := openProject(cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	res, pub, err := p.generateOnce(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	printSummary(res, pub)
	printStages(res, generateStages)
	if res.HasErrors() {
		return errors.New("generation reported errors")
	}
	return nil
}
