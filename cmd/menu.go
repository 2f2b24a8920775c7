package main

import (
	"context"
	"os"

	"cine-stats/app"
	"cine-stats/notifier"
	"cine-stats/render"
	"cine-stats/storage"

	"github.com/urfave/cli"
)

func makeMenuCMD() cli.Command {
	menuCMD := cli.Command{
		Name:    "menu",
		Aliases: []string{"m"},
		Usage:   "Runs the interactive menu",
		Action:  menu,
	}
	configureMenu(&menuCMD)
	return menuCMD
}

func configureMenu(c *cli.Command) {
	c.Flags = registerSessionFlags(c.Flags)
}

func menu(c *cli.Context) error {
	// Setting storage
	store, err := storage.New(c)
	if err != nil {
		return err
	}
	defer store.Close()

	// Setting renderer
	re, err := render.New(c, os.Stdout)
	if err != nil {
		return err
	}

	n := notifier.NewConsoleNotifier(os.Stdout)
	s := app.NewSession(store, re, os.Stdout)
	m := app.NewMenu(s, n, os.Stdin, os.Stdout, c.String(inputFlag))

	return m.Run(context.Background())
}
