package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/readsplit/internal/config"
)

func defaultConfigHint() string {
	return config.DefaultConfigPath()
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  readsplit config validate [--config PATH]")
	fmt.Fprintln(os.Stderr, "  readsplit config print    [--config PATH] [--defaults]")
	fmt.Fprintln(os.Stderr, "  readsplit config explain  [--config PATH] <key>")
	fmt.Fprintln(os.Stderr, "  readsplit config init     [--config PATH] [--force]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Keys: %s\n", strings.Join(config.Keys(), ", "))
}

func runConfig(args []string) int {
	if len(args) == 0 {
		printConfigUsage()
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "validate":
		return runConfigValidate(rest)
	case "print":
		return runConfigPrint(rest)
	case "explain":
		return runConfigExplain(rest)
	case "init":
		return runConfigInit(rest)
	case "help", "-h", "--help":
		printConfigUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n\n", sub)
		printConfigUsage()
		return 2
	}
}

func configFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet("config "+name, flag.ContinueOnError)
	path := fs.String("config", "", "Config file path (default: "+defaultConfigHint()+")")
	return fs, path
}

func runConfigValidate(args []string) int {
	fs, path := configFlagSet("validate")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if res.File == "" {
		fmt.Println("config: ok (no file, using defaults)")
	} else {
		fmt.Printf("config: ok (%s)\n", res.File)
	}
	return 0
}

func runConfigPrint(args []string) int {
	fs, path := configFlagSet("print")
	defaults := fs.Bool("defaults", false, "Print built-in defaults and ignore the file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.File != "" {
			fmt.Printf("# file: %s\n", res.File)
		}
		cfg = res.Config
	}
	fmt.Printf("# capture_dir resolves to: %s\n", cfg.GetCaptureDir())

	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	os.Stdout.Write(data)
	return 0
}

func runConfigExplain(args []string) int {
	fs, path := configFlagSet("explain")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "explain takes exactly one <key>")
		return 2
	}
	key := fs.Arg(0)

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	value, src, err := config.Explain(res, key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("%s: %s", key, out)
	fmt.Printf("  from %s\n", formatSource(src))
	return 0
}

// runConfigInit writes the defaults so there is a file to edit.
func runConfigInit(args []string) int {
	fs, path := configFlagSet("init")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	target := *path
	if target == "" {
		target = config.DefaultConfigPath()
	}
	if _, err := os.Stat(target); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
		return 1
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := config.DefaultConfig().Save(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s\n", target)
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
