package main

import (
	"fmt"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/stemquest/apps/api/echo"
	"github.com/trezcool/stemquest/core/player"
)

// issueToken prints a token for p, signed like the portal's. Meant for local development and smoke tests.
func (cli *commandLine) issueToken(p player.Player) error {
	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetPlayerClaims(cli.conf, p))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}
