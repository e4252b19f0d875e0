package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/app"
)

var quizCmd = &cobra.Command{
	Use:   "quiz [batch-id]",
	Short: "Take a logged batch as an interactive quiz",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := app.Options{Logs: st.logs}
		if len(args) == 1 {
			opts.BatchID = args[0]
		}
		return app.Run(opts)
	},
}
