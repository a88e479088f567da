package main

import (
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	dataDirFlag = "data-dir"
	configFlag  = "config"
)

// Shared by every command that touches the data directory.
var storeFlags = map[string]cobraflags.Flag{
	dataDirFlag: &cobraflags.StringFlag{
		Name:  dataDirFlag,
		Value: "",
		Usage: "Directory holding config.yml, the database and the instance lock (default $LEADS_DATA_DIR or .)",
	},
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Config file path (default <data-dir>/config.yml)",
	},
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "engine",
		Short: "Lead collector backend: ingestion API, dashboard and admin console",
		Long: `Runs the HTTP server that receives extractions from the browser extension,
serves the dashboard and exposes the admin console.

Examples:
  engine --data-dir /var/lib/leads
  engine create-user --email sam@example.com --password s3cret --role admin
  engine admin-password set --password s3cret`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         serveCommand,
	}
	cobraflags.RegisterMap(root, storeFlags)

	root.AddCommand(newCreateUserCommand())
	root.AddCommand(newAdminPasswordCommand())
	return root
}
