package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to chattrust CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprint(a.out, "trust> ")
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: register <user>, login <user>, encrypt <from> <to>, split <t> <user...>, exit")

		case "register":
			if len(args) != 1 {
				fmt.Fprintln(a.out, "usage: register <user>")
				continue
			}
			if err := a.Register(ctx, args[0]); err != nil {
				fmt.Fprintf(a.out, "register failed: %v\n", err)
			}

		case "login":
			if len(args) != 1 {
				fmt.Fprintln(a.out, "usage: login <user>")
				continue
			}
			if err := a.Login(ctx, args[0]); err != nil {
				fmt.Fprintf(a.out, "login failed: %v\n", err)
			}

		case "encrypt":
			if len(args) != 2 {
				fmt.Fprintln(a.out, "usage: encrypt <from> <to>")
				continue
			}
			reader := bufio.NewReader(os.Stdin)
			text, err := GetSimpleText(reader, "Message", a.out)
			if err != nil {
				fmt.Fprintf(a.out, "read failed: %v\n", err)
				continue
			}
			if err := a.EncryptDemo(args[0], args[1], []byte(text)); err != nil {
				fmt.Fprintf(a.out, "encrypt failed: %v\n", err)
			}

		case "split":
			if len(args) < 3 {
				fmt.Fprintln(a.out, "usage: split <t> <user> <user> [user...]")
				continue
			}
			threshold, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintln(a.out, "threshold must be a number")
				continue
			}
			if err := a.SplitDemo(threshold, args[1:]); err != nil {
				fmt.Fprintf(a.out, "split failed: %v\n", err)
			}

		case "exit":
			return

		default:
			fmt.Fprintf(a.out, "unknown command %q\n", cmd)
		}
	}
}
