package cmd

import (
	"fmt"
	"os"

	"github.com/bivex/loreSystem-sub001/internal/axiom"
	"github.com/bivex/loreSystem-sub001/internal/engine"
	"github.com/bivex/loreSystem-sub001/internal/fol"
	"github.com/bivex/loreSystem-sub001/internal/persistence"
	"github.com/bivex/loreSystem-sub001/internal/scenario"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [axioms.yaml] [scenario.yaml]",
	Short: "Export a session to first-order-logic artifacts",
	Long: `Rebuilds a session and writes axioms.in, state.in and invariants.in
for an external theorem prover. With --journal the session is rebuilt by
replaying the journaled event log against the scenario's seed characters;
otherwise the scenario steps are re-run (replay is deterministic, so both
paths produce the same history).`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		set, err := axiom.LoadFile(args[0])
		if err != nil {
			fmt.Printf("Error loading axiom set: %v\n", err)
			os.Exit(1)
		}

		sc, err := scenario.LoadFile(args[1])
		if err != nil {
			fmt.Printf("Error loading scenario: %v\n", err)
			os.Exit(1)
		}

		session, err := rebuildSession(cmd, set, sc)
		if err != nil {
			fmt.Printf("Error rebuilding session: %v\n", err)
			os.Exit(1)
		}

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = viper.GetString("export_dir")
		}
		if outDir == "" {
			outDir = "."
		}

		files, err := fol.Export(session, outDir)
		if err != nil {
			fmt.Printf("Error exporting session: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Exported %d events.\n", len(session.Events()))
		fmt.Printf("- %s\n- %s\n- %s\n", files.Axioms, files.State, files.Invariants)
	},
}

// rebuildSession reconstructs a session either from a journal replay or by
// re-running the scenario steps.
func rebuildSession(cmd *cobra.Command, set *axiom.Set, sc *scenario.Scenario) (*engine.Session, error) {
	journalPath, _ := cmd.Flags().GetString("journal")
	if journalPath == "" {
		journalPath = viper.GetString("journal")
	}

	if journalPath != "" {
		journal, err := persistence.Open(journalPath)
		if err != nil {
			return nil, err
		}
		defer journal.Close()

		events, err := journal.Load()
		if err != nil {
			return nil, err
		}
		return engine.NewProjector().Rebuild(set, sc.Characters, events)
	}

	session, err := engine.NewSession(set, sc.Characters)
	if err != nil {
		return nil, err
	}
	scenario.Run(session, sc.Steps)
	return session, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("journal", "", "Rebuild the session from this JSONL journal instead of re-running steps")
	exportCmd.Flags().String("out", "", "Directory for the .in artifacts (default from config, else current dir)")
}
