package main

import (
	"fmt"
	"strconv"

	"github.com/abacusquest/abacusquest/internal/db"
	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/services"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset <student-id>",
		Short: "Clear a student's achievements, coins, streak and experience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid student id %q", args[0])
			}
			path, _ := cmd.Flags().GetString("db")

			database, err := db.Open(path)
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			kv := kvstore.NewSQLite(database.DB)
			if err := services.NewGamificationService(kv, nil, nil).Reset(ctx, id); err != nil {
				return err
			}
			if all {
				scope := kvstore.StudentScope(id)
				keys, err := kv.Keys(ctx, scope)
				if err != nil {
					return err
				}
				for _, key := range keys {
					if err := kv.Delete(ctx, scope, key); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset student %d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also clear goal and todo lists")
	return cmd
}
