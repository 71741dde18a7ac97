package cmd

import (
	"github.com/spf13/cobra"

	"statement-distributor/internal/groups"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the account groups that receive statements",
	Long: `Groups prints the departmental account groups statements are distributed to,
sorted by name. Groups without a contact email are marked; they are recorded
as failed during a run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		all, err := groups.Load(cfg.AccountGroupsPath)
		if err != nil {
			return err
		}
		candidates, err := groups.Candidates(all)
		if err != nil {
			return err
		}
		return groups.List(cmd.OutOrStdout(), candidates)
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
