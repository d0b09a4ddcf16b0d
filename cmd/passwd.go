package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/crypto/bcrypt"
)

// passwdCmd hashes a new admin secret for the configuration file.
type passwdCmd struct{}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "Hash a new admin password for the config file." }
func (*passwdCmd) Usage() string {
	return `passwd:
	Prompts for a new admin password and prints its bcrypt hash, to be
	pasted as admin_secret in the configuration file.
`
}

func (*passwdCmd) SetFlags(f *flag.FlagSet) {}

func (c *passwdCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	in := bufio.NewReader(os.Stdin)

	fmt.Print("New admin password: ")
	line, err := in.ReadString('\n')
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	secret := strings.TrimRight(line, "\r\n")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "Error: empty password")
		return subcommands.ExitFailure
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Set in the config file:")
	fmt.Printf("admin_secret: %q\n", string(hash))
	return subcommands.ExitSuccess
}
