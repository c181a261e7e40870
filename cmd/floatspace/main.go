package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/termify/floatspace/internal/config"
	"github.com/termify/floatspace/internal/ipc"
	"github.com/termify/floatspace/internal/runtimepath"
	"github.com/termify/floatspace/internal/tui"
	"github.com/termify/floatspace/internal/workspace"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "tab":
		os.Exit(runTab(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: floatspace <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the floatspace daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout show         Show window geometry")
	fmt.Fprintln(w, "  layout reset        Drop manual placement and re-tile")
	fmt.Fprintln(w, "  layout preview      Draw the grid N windows would get")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tab open            Open a terminal tab")
	fmt.Fprintln(w, "  tab list            List tabs")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window focus        Focus and raise a window")
	fmt.Fprintln(w, "  window move         Move a window")
	fmt.Fprintln(w, "  window resize       Resize a window from an edge or corner")
	fmt.Fprintln(w, "  window snap         Snap a window left/right/up/down")
	fmt.Fprintln(w, "  window maximize     Toggle maximize")
	fmt.Fprintln(w, "  window minimize     Toggle minimize")
	fmt.Fprintln(w, "  window close        Close a window's tab")
	fmt.Fprintln(w, "  window key          Send a key chord to the focused window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print config and socket paths")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive workspace simulator")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatspace <command> --help' for command-specific options.")
}

// parseFlags parses args into fs. ok is false when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func newFlagSet(name, usage, about string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, about)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "floatspace status [--json]", "Show daemon status via IPC.")
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("container:      %dx%d\n", status.Container.Width, status.Container.Height)
	fmt.Printf("windows:        %d (%d customized)\n", status.Windows, status.Customized)
	fmt.Printf("focused:        %s\n", status.Focused)
	fmt.Printf("top_z:          %d\n", status.TopZ)
	fmt.Printf("tabs_mode:      %s\n", status.TabsMode)
	fmt.Printf("pending_save:   %v\n", status.PendingSave)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatspace layout show [--json]")
	fmt.Fprintln(w, "  floatspace layout reset")
	fmt.Fprintln(w, "  floatspace layout preview [--width W] [--height H] [--gap G] <count>")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "show":
		fs := newFlagSet("show", "floatspace layout show [--json]", "Show every window's geometry in tab order.")
		jsonOut := fs.Bool("json", false, "Output the layout as JSON")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		layout, err := ipc.NewClient().GetLayout()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(layout)
		}
		fmt.Printf("container: %dx%d\n", layout.Container.Width, layout.Container.Height)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tX\tY\tW\tH\tZ\tMODE\tFLAGS")
		for _, w := range layout.Windows {
			flags := ""
			if w.IsCustomized {
				flags += "customized "
			}
			if w.Focused {
				flags += "focused"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
				w.ID, w.Name, w.Display.X, w.Display.Y, w.Display.Width, w.Display.Height, w.ZIndex, w.Mode, flags)
		}
		tw.Flush()
		return 0

	case "reset":
		fs := newFlagSet("reset", "floatspace layout reset", "Clear every manual move and resize and re-tile all windows.")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if err := ipc.NewClient().Reset(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "preview":
		fs := newFlagSet("preview", "floatspace layout preview [--width W] [--height H] [--gap G] <count>",
			"Draw the grid a container would give <count> windows. Runs offline.")
		width := fs.Int("width", 1280, "Container width in pixels")
		height := fs.Int("height", 800, "Container height in pixels")
		gap := fs.Int("gap", 4, "Gap between cells in pixels")
		cols := fs.Int("cols", 64, "Preview width in characters")
		rows := fs.Int("rows", 20, "Preview height in characters")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "layout preview requires <count>")
			fs.Usage()
			return 2
		}
		var count int
		if _, err := fmt.Sscanf(fs.Arg(0), "%d", &count); err != nil || count < 0 {
			fmt.Fprintf(os.Stderr, "invalid count %q\n", fs.Arg(0))
			return 2
		}
		for _, line := range tui.PreviewLines(count, workspace.Size{Width: *width, Height: *height}, *gap, *cols, *rows) {
			fmt.Println(line)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

func printTabUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  floatspace tab open [--name NAME]")
	fmt.Fprintln(w, "  floatspace tab list [--json]")
}

func runTab(args []string) int {
	if len(args) == 0 {
		printTabUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printTabUsage(os.Stdout)
		return 0
	}

	client := ipc.NewClient()

	switch args[0] {
	case "open":
		fs := newFlagSet("open", "floatspace tab open [--name NAME]", "Open a terminal tab. Its window takes the next grid cell.")
		name := fs.String("name", "", "Tab name (default: Terminal)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		tab, err := client.OpenTab(*name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(tab.ID)
		return 0

	case "list":
		fs := newFlagSet("list", "floatspace tab list [--json]", "List tabs with a window, in tab order.")
		jsonOut := fs.Bool("json", false, "Output as JSON")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		layout, err := client.GetLayout()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(layout.Windows)
		}
		for _, w := range layout.Windows {
			fmt.Printf("%s\t%s\t%s\n", w.ID, w.TerminalID, w.Name)
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown tab command: %s\n\n", args[0])
		printTabUsage(os.Stderr)
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  floatspace config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  floatspace config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  floatspace config path")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/floatspace/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/floatspace/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
			fmt.Printf("# file: %s\n", res.File)
			for key, src := range res.Sources {
				if src.Kind == config.SourceEnv {
					fmt.Printf("# %s: from %s\n", key, src.Name)
				}
			}
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		socket, err := runtimepath.SocketPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: %s\n", path)
		fmt.Printf("socket: %s\n", socket)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "floatspace tui [--path PATH] [--persist]",
		"Interactive simulator over an in-process layout engine.\n\n"+
			"Keys: arrows move, shift+arrows resize, ctrl+arrows snap, tab focus,\n"+
			"m maximize, n minimize, a open, x close, r reset, q quit.")
	path := fs.String("path", "", "Config file path (default: ~/.config/floatspace/config.yaml)")
	persistLayout := fs.Bool("persist", false, "Save the layout to the configured storage backend")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if !*persistLayout {
		cfg.Storage.Backend = config.StorageMemory
	}
	// The simulator owns its own tab list.
	cfg.TabsMode = config.TabsLocal

	// Log to a discard handler so the alt screen stays clean.
	rt, err := newRuntime(cfg, discardLogger(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer rt.Close()

	if err := tui.Run(rt.engine, cfg.GapSize); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
