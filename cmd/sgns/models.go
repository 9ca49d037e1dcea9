package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func NewModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"ls"},
		Short:   "List stored models",
		Args:    cobra.NoArgs,
		RunE:    runModels,
	}
}

func runModels(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tWORDS\tDIM\tCREATED")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			entry.Name, entry.ID, entry.Words, entry.Dim, entry.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}
