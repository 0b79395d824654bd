package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Pair(ctx context.Context) error
	Accept(ctx context.Context) error
	Devices(ctx context.Context) error
	Sync(ctx context.Context, peerID string) error
	Add(ctx context.Context, text string) error
	List(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the jotkeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help             — show available commands
//   - pair             — show this device's pairing code
//   - accept           — enter a code from another device
//   - devices          — list paired devices
//   - sync [device]    — sync with one device, or all when omitted
//   - add <text>       — capture a journal entry
//   - list             — list all records
//   - exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		fmt.Printf("jot %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: pair, accept, devices, sync [device], add <text>, (l)ist, exit")

		case "pair":
			_ = a.Pair(ctx)

		case "accept":
			_ = a.Accept(ctx)

		case "devices":
			_ = a.Devices(ctx)

		case "sync":
			peer := ""
			if len(args) > 0 {
				peer = args[0]
			}
			_ = a.Sync(ctx, peer)

		case "add":
			if len(args) == 0 {
				printlnFn("Usage: add <text>")
				continue
			}
			_ = a.Add(ctx, strings.Join(args, " "))

		case "l", "list":
			_ = a.List(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
