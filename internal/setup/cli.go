package setup

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/symptom-triage-server/internal/config"
)

const usage = `Symptom triage MCP server setup

Usage:
  mcp-server setup <command> [options]

Commands:
  claude-desktop  Register this server with Claude Desktop
                  --binary PATH    server binary (default: this executable)
                  --data-dir DIR   data directory passed as TRIAGE_DATA_DIR
                  --config PATH    client config file (default: platform location)
  status          Show the current registration
`

// CLI runs the setup subcommands.
type CLI struct {
	out io.Writer
}

// NewCLI creates a CLI printing to out.
func NewCLI(out io.Writer) *CLI {
	return &CLI{out: out}
}

// Run executes the subcommand in args.
func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return nil
	}

	switch args[0] {
	case "claude-desktop":
		return c.configure(args[1:])
	case "status":
		return c.status(args[1:])
	case "help", "--help", "-h":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.out, usage)
		return fmt.Errorf("unknown setup command %q", args[0])
	}
}

func (c *CLI) configure(args []string) error {
	fs := flag.NewFlagSet("claude-desktop", flag.ContinueOnError)
	fs.SetOutput(c.out)
	var opts Options
	fs.StringVar(&opts.BinaryPath, "binary", "", "server binary")
	fs.StringVar(&opts.DataDir, "data-dir", "", "data directory")
	fs.StringVar(&opts.ConfigPath, "config", "", "client config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.DataDir != "" {
		abs, err := filepath.Abs(opts.DataDir)
		if err != nil {
			return err
		}
		opts.DataDir = abs
		lite := &config.LiteConfig{DataDir: abs}
		if err := lite.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	path, err := Configure(opts)
	if err != nil {
		return fmt.Errorf("failed to configure Claude Desktop: %w", err)
	}

	fmt.Fprintf(c.out, "Registered %q in %s\n", ServerKey, path)
	fmt.Fprintln(c.out, "Restart Claude Desktop to load the new configuration.")
	return nil
}

func (c *CLI) status(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.out)
	configPath := fs.String("config", "", "client config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		var err error
		if path, err = ClientConfigPath(); err != nil {
			return err
		}
	}

	status, err := GetStatus(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Config file: %s\n", status.ConfigPath)
	fmt.Fprintf(c.out, "Registered:  %t\n", status.Configured)
	if status.Configured {
		fmt.Fprintf(c.out, "Binary:      %s\n", status.BinaryPath)
	}
	fmt.Fprintf(c.out, "Data dir:    %s\n", status.DataDir)
	lite := &config.LiteConfig{DataDir: status.DataDir}
	if _, err := os.Stat(lite.FeedbackDBPath()); err == nil {
		fmt.Fprintln(c.out, "Feedback DB: present")
	} else {
		fmt.Fprintln(c.out, "Feedback DB: not created yet")
	}
	for _, issue := range status.Issues {
		fmt.Fprintf(c.out, "Issue:       %s\n", issue)
	}
	return nil
}
