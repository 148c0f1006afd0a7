package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "SpinVault"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Serves the spin, claim and player endpoints.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database and seed reward tokens",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Creates the schema and upserts the reward token table from the environment.`,
		},
	}

	s.app = app
}
