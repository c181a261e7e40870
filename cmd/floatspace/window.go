package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/termify/floatspace/internal/ipc"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatspace window focus <id>")
	fmt.Fprintln(w, "  floatspace window move [--relative] <id> <x> <y>")
	fmt.Fprintln(w, "  floatspace window resize [--handle H] <id> <dx> <dy>")
	fmt.Fprintln(w, "  floatspace window snap <id> <left|right|up|down>")
	fmt.Fprintln(w, "  floatspace window maximize <id>")
	fmt.Fprintln(w, "  floatspace window minimize <id>")
	fmt.Fprintln(w, "  floatspace window close <id>")
	fmt.Fprintln(w, "  floatspace window key <chord>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Resize handles: left, right, top, bottom, top-left, top-right,")
	fmt.Fprintln(w, "bottom-left, bottom-right (default).")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWindowUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "focus":
		return runWindowOp(args[1:], "focus", "Bring a window to the front and give it keyboard focus.", client.Focus)
	case "maximize":
		return runWindowOp(args[1:], "maximize", "Toggle maximize. Maximizing does not change the saved layout.", client.ToggleMaximize)
	case "minimize":
		return runWindowOp(args[1:], "minimize", "Toggle minimize.", client.ToggleMinimize)
	case "close":
		return runWindowOp(args[1:], "close", "Close a window's tab.", client.Close)

	case "move":
		fs := newFlagSet("move", "floatspace window move [--relative] <id> <x> <y>",
			"Move a window. It stays at least partly reachable and is pinned against re-tiling.")
		relative := fs.Bool("relative", false, "Treat x and y as an offset")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 3 {
			fs.Usage()
			return 2
		}
		x, y, err := parsePair(fs.Arg(1), fs.Arg(2))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if *relative {
			err = client.MoveBy(fs.Arg(0), x, y)
		} else {
			err = client.Move(fs.Arg(0), x, y)
		}
		return exitOn(err)

	case "resize":
		fs := newFlagSet("resize", "floatspace window resize [--handle H] <id> <dx> <dy>",
			"Drag a resize handle by an offset. Windows never shrink below the configured minimum.")
		handle := fs.String("handle", "bottom-right", "Edge or corner to drag")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 3 {
			fs.Usage()
			return 2
		}
		dx, dy, err := parsePair(fs.Arg(1), fs.Arg(2))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return exitOn(client.Resize(fs.Arg(0), *handle, dx, dy))

	case "snap":
		fs := newFlagSet("snap", "floatspace window snap <id> <left|right|up|down>",
			"Left and right dock to half the container. Up maximizes. Down restores, then minimizes.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 2 {
			fs.Usage()
			return 2
		}
		return exitOn(client.Snap(fs.Arg(0), fs.Arg(1)))

	case "key":
		fs := newFlagSet("key", "floatspace window key <chord>",
			"Deliver a key chord such as ctrl+left to the keyboard-focused window.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fs.Usage()
			return 2
		}
		handled, err := client.Key(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !handled {
			fmt.Fprintln(os.Stderr, "no focused window handled the key")
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func runWindowOp(args []string, name, about string, op func(id string) error) int {
	fs := newFlagSet(name, "floatspace window "+name+" <id>", about)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	return exitOn(op(fs.Arg(0)))
}

func parsePair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number %q", b)
	}
	return x, y, nil
}

func exitOn(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
