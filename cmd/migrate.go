package main

import (
	"context"
	"fmt"

	"cine-stats/storage"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func makeMigrateCMD() cli.Command {
	migrateCMD := cli.Command{
		Name:      "migrate",
		Usage:     "Manages the query engine schema of a file backed store",
		ArgsUsage: "up | down | status | version | reset",
		Action:    migrate,
	}
	configureMigrate(&migrateCMD)
	return migrateCMD
}

func configureMigrate(c *cli.Command) {
	c.Flags = storage.RegisterFlags(c.Flags)
}

func migrate(c *cli.Context) error {
	command := c.Args().First()
	if command == "" {
		command = "up"
	}

	// Opening storage without migrating it
	store, err := storage.Open(c)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	switch command {
	case "up":
		if err := store.RunMigrations(ctx); err != nil {
			return err
		}
		fmt.Println("Migrations completed successfully")
	case "down":
		if err := store.RollbackMigration(ctx); err != nil {
			return err
		}
		fmt.Println("Migration rolled back successfully")
	case "status":
		mm, err := store.GetMigrationManager()
		if err != nil {
			return err
		}
		if err := mm.Status(ctx); err != nil {
			return err
		}
		if err := mm.Check(ctx); err != nil {
			fmt.Println(err)
		}
	case "version":
		version, err := store.GetDatabaseVersion(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Database version: %d (queries need %d)\n", version, storage.SchemaVersion)
	case "reset":
		if err := store.ResetDatabase(ctx); err != nil {
			return err
		}
		fmt.Println("Database reset completed successfully")
	default:
		return errors.Errorf("unknown migration command %q", command)
	}
	return nil
}
