// Command genhash prints a bcrypt hash for ADMIN_PASSWORD_HASH.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"splitdine-admin.backend/pkg/crypto"
)

var (
	stdout        io.Writer = os.Stdout
	fatalfFn                = log.Fatalf
	hashPasswordF           = crypto.HashPasswordWithCost
)

var errNoPassword = errors.New("usage: genhash [-cost N] <password>")

func run(args []string) error {
	fs := flag.NewFlagSet("genhash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cost := fs.Int("cost", crypto.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || fs.Arg(0) == "" {
		return errNoPassword
	}

	hash, err := hashPasswordF(fs.Arg(0), *cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "ADMIN_PASSWORD_HASH=%s\n", hash)
	return err
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fatalfFn("%v", err)
	}
}
