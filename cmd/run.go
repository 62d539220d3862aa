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

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [axioms.yaml] [scenario.yaml]",
	Short: "Run a scenario against an axiom set and print the event log",
	Long: `Loads an axiom set and a scenario, seeds a fresh session, applies
every step in order, and prints committed events and rejections. With
--journal the event log is also appended to a JSONL file; with --export
the finished session is serialized to FOL artifacts.`,
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

		var opts []engine.Option
		journalPath, _ := cmd.Flags().GetString("journal")
		if journalPath == "" {
			journalPath = viper.GetString("journal")
		}
		if journalPath != "" {
			journal, err := persistence.Open(journalPath)
			if err != nil {
				fmt.Printf("Error opening journal: %v\n", err)
				os.Exit(1)
			}
			defer journal.Close()
			opts = append(opts, engine.WithJournal(journal))
		}

		session, err := engine.NewSession(set, sc.Characters, opts...)
		if err != nil {
			fmt.Printf("Error seeding session: %v\n", err)
			os.Exit(1)
		}

		results := scenario.Run(session, sc.Steps)
		rejected := 0
		for _, res := range results {
			if res.Err != nil {
				rejected++
				fmt.Printf("[rejected] %s %s: %v\n", res.Step.Op, res.Step.Character, res.Err)
				continue
			}
			fmt.Println(res.Event.Message())
		}

		fmt.Printf("\n%d steps, %d committed, %d rejected, clock at t=%d\n",
			len(results), len(results)-rejected, rejected, session.Now())

		exportDir, _ := cmd.Flags().GetString("export")
		if exportDir == "" {
			exportDir = viper.GetString("export_dir")
		}
		if exportDir != "" {
			files, err := fol.Export(session, exportDir)
			if err != nil {
				fmt.Printf("Error exporting session: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Exported %s, %s, %s\n", files.Axioms, files.State, files.Invariants)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("journal", "", "Append committed events to this JSONL file")
	runCmd.Flags().String("export", "", "Write FOL artifacts into this directory after the run")
}
