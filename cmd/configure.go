package main

import (
	"cine-stats/render"
	"cine-stats/storage"

	"github.com/urfave/cli"
)

const inputFlag = "input"

func configure(app *cli.App) {
	menuCMD := makeMenuCMD()
	batchCMD := makeBatchCMD()
	migrateCMD := makeMigrateCMD()
	app.Commands = []cli.Command{menuCMD, batchCMD, migrateCMD}
}

func registerInputFlag(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   inputFlag + ", i",
			Usage:  "catalog csv file",
			Value:  "netflixdataset.csv",
			EnvVar: "DATASET_PATH",
		},
	)
}

func registerSessionFlags(f []cli.Flag) []cli.Flag {
	f = registerInputFlag(f)
	f = storage.RegisterFlags(f)
	f = render.RegisterFlags(f)
	return f
}
