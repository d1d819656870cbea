package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/domain"
	"taskboard/internal/service"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage task owners",
}

var ownerCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register an owner and print its id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store) error {
			owner, err := service.NewOwnerService(s, nil).CreateOwner(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), owner.ID)
			return nil
		})
	},
}

var ownerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List owners by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s store) error {
			owners, err := service.NewOwnerService(s, nil).ListOwners(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatOwnerTable(owners))
			return nil
		})
	},
}

func init() {
	ownerCmd.AddCommand(ownerCreateCmd, ownerListCmd)
	rootCmd.AddCommand(ownerCmd)
}

func formatOwnerTable(owners []domain.Owner) string {
	if len(owners) == 0 {
		return "No owners found.\n"
	}
	rows := make([][]string, 0, len(owners))
	for _, o := range owners {
		rows = append(rows, []string{o.ID.String(), truncateTableCell(o.Name)})
	}
	return formatTable([]string{"ID", "NAME"}, rows)
}
