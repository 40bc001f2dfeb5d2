package main

import (
	"fmt"

	"github.com/slate-lang/slate/internal/diag"
	"github.com/slate-lang/slate/internal/log"
	"github.com/slate-lang/slate/internal/types"
	"github.com/spf13/cobra"
)

var UnifyCmd = &cobra.Command{
	Use:          "unify <fixture.yaml>",
	Short:        "try_unify a fixture's super/sub type pair and print the errors, if any",
	RunE:         runUnify,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	invariant        *bool
	noUnionHeuristic *bool
	legacyTables     *bool
	traceSections    *[]string
)

func init() {
	invariant = UnifyCmd.Flags().Bool("invariant", false, "unify under Invariant variance instead of Covariant")
	noUnionHeuristic = UnifyCmd.Flags().Bool("no-union-heuristic", false, "disable the union shape-matching heuristic")
	legacyTables = UnifyCmd.Flags().Bool("legacy-tables", false, "use the pre-variance table unification path")
	traceSections = UnifyCmd.Flags().StringSlice("trace", nil, "enable Debug-level unify logging for these sections (unify, cache)")
}

func runUnify(cmd *cobra.Command, args []string) error {
	if len(*traceSections) > 0 {
		log.EnableSections(*traceSections...)
	}

	arena, super, sub, err := loadFixture(args[0])
	if err != nil {
		return err
	}

	opts := types.DefaultOptions()
	opts.UnionHeuristic = !*noUnionHeuristic
	opts.TableSubtypingVariance = !*legacyTables

	variance := types.Covariant
	if *invariant {
		variance = types.Invariant
	}

	shared := types.NewSharedState(arena, opts)
	loc := diag.Location{File: args[0]}
	u := types.New(arena, types.ModeStrict, true, loc, variance, shared)

	u.TryUnifyType(super, sub)

	errs := u.Errors()
	if len(errs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok: unifies with no errors")
		return nil
	}
	for _, e := range errs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Error())
	}
	return fmt.Errorf("%d unification error(s)", len(errs))
}
