package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/player"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	openDB   func() (*sql.DB, error) // only migrations need a database
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the configured database")
	fmt.Fprintln(cli.out, "  token -player ID -username NAME [-role ROLE]... - issue a signed API token")
	fmt.Fprintln(cli.out, "  levels [-file PATH] - validate and list a level catalog (the built-in one by default)")
}

// rolesFlag collects repeated -role flags.
type rolesFlag []string

func (r *rolesFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *rolesFlag) Set(role string) error {
	if !player.IsValidRole(role) {
		return fmt.Errorf("unknown role %q (one of %s)", role, strings.Join(player.AllRoles, ", "))
	}
	*r = append(*r, role)
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenPlayer := tokenCmd.String("player", "", "The player ID, as known to the portal.")
	tokenUsername := tokenCmd.String("username", "", "The player's username.")
	var tokenRoles rolesFlag
	tokenCmd.Var(&tokenRoles, "role", "A role of the player; repeatable. Defaults to "+player.RoleStudent)

	levelsCmd := flag.NewFlagSet("levels", flag.ContinueOnError)
	levelsCmd.SetOutput(cli.out)
	levelsFile := levelsCmd.String("file", "", "Path of a YAML level catalog. Empty for the built-in catalog.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenPlayer == "" || *tokenUsername == "" {
			tokenCmd.Usage()
			return errHelp
		}
		if len(tokenRoles) == 0 {
			tokenRoles = rolesFlag{player.RoleStudent}
		}
		p := player.Player{ID: *tokenPlayer, Username: *tokenUsername, Roles: tokenRoles}
		if err := cli.validate.Struct(p); err != nil {
			return errors.Wrap(err, "invalid player")
		}
		return cli.issueToken(p)
	case "levels":
		if err := levelsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listLevels(*levelsFile)
	default:
		cli.printUsage()
		return errHelp
	}
}
