package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/suite"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/modelfile"
)

var (
	showSuite bool
	suiteSeed int64
)

var validateCmd = &cobra.Command{
	Use:   "validate <model.yaml>",
	Short: "Check a model file",
	Long: `Parse a model file and report its input space.

With --suite the initial covering suite that 'faultchar run' would generate
is printed as well.

EXAMPLES:
  faultchar validate model.yaml
  faultchar validate model.yaml --suite --seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&showSuite, "suite", false, "print the generated initial suite")
	validateCmd.Flags().Int64Var(&suiteSeed, "seed", 0, "suite generation seed (0 = random)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := modelfile.Load(args[0])
	if err != nil {
		return err
	}

	ui.PrintHeader("Model")
	ui.PrintInfo(fmt.Sprintf("Strength: %d", m.Model.Strength()))
	total := 1
	for i, name := range m.ParameterNames {
		ui.PrintInfo(fmt.Sprintf("  %-16s %v", name, m.ValueNames[i]))
		total *= len(m.ValueNames[i])
	}
	ui.PrintInfo(fmt.Sprintf("Full combinations: %d", total))
	ui.PrintInfo(fmt.Sprintf("Forbidden tuple lists: %d", len(m.Model.ForbiddenTupleLists())))
	ui.PrintInfo(fmt.Sprintf("Error tuple lists: %d", len(m.Model.ErrorTupleLists())))
	if len(m.Initial) > 0 {
		ui.PrintInfo(fmt.Sprintf("Initial test inputs: %d", len(m.Initial)))
	}
	ui.PrintSuccess("Model is valid")

	if !showSuite {
		return nil
	}

	builder := suite.NewGreedyBuilder(suiteSeed, domain.DefaultSessionConfig().SuiteCandidates)
	inputs, err := builder.Build(m.Model, domain.NewTupleConstraintChecker(m.Model))
	if err != nil {
		return fmt.Errorf("failed to build initial suite: %w", err)
	}

	ui.PrintHeader(fmt.Sprintf("Initial Suite (%d inputs)", len(inputs)))
	rows := make([][]string, len(inputs))
	for i, c := range inputs {
		rows[i] = make([]string, len(m.ParameterNames))
		for p := range m.ParameterNames {
			rows[i][p] = m.ValueNames[p][c.At(p)]
		}
	}
	ui.PrintTable(m.ParameterNames, rows)
	return nil
}
