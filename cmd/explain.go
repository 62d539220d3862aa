package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bivex/loreSystem-sub001/internal/axiom"
	"github.com/bivex/loreSystem-sub001/internal/engine"
	"github.com/bivex/loreSystem-sub001/internal/scenario"

	"github.com/spf13/cobra"
)

// explainCmd represents the explain command
var explainCmd = &cobra.Command{
	Use:   "explain [axioms.yaml] [scenario.yaml] [character] [attribute] [time]",
	Short: "Explain why a fact holds at a point in time",
	Long: `Re-runs a scenario and walks the event log backward from the fact
holding for the given character and attribute to its justifying event.
Attributes use their key form: level, experience, class, stat(strength),
equipped(armor). Time defaults to the end of the run.`,
	Args: cobra.RangeArgs(4, 5),
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

		attr, err := engine.ParseAttr(args[3])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		session, err := engine.NewSession(set, sc.Characters)
		if err != nil {
			fmt.Printf("Error seeding session: %v\n", err)
			os.Exit(1)
		}
		scenario.Run(session, sc.Steps)

		t := session.Now()
		if len(args) == 5 {
			t, err = strconv.Atoi(args[4])
			if err != nil {
				fmt.Printf("Error: invalid time %q\n", args[4])
				os.Exit(1)
			}
		}

		rec, err := session.Explain(args[2], attr, t)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s.%s = %v at t=%d\n", rec.Fact.Character, rec.Fact.Attr.Key(), rec.Fact.Value, rec.Fact.Time)
		if rec.EventID == "" {
			fmt.Println("├─ seed fact, no producing event")
		} else {
			fmt.Printf("├─ produced by %s (%s)\n", rec.EventID, rec.Cause)
			for _, ref := range rec.RuleRefs {
				fmt.Printf("├─ authorized by %s\n", ref)
			}
		}
		if rec.Previous != nil {
			fmt.Printf("├─ previous value %v at t=%d\n", rec.Previous.Value, rec.Previous.Time)
		}
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
