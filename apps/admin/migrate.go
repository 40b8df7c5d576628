package main

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	return gooseRunFunc(db, cli.conf.Database.Engine, args[0], args[1:]...)
}
