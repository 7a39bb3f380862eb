/*
Yarnrun starts an interactive dialogue session from a Yarn project or
source file and drives it from the console.

It reads in a project manifest (or a single source file) and starts the
dialogue at its designated start node. Lines are printed to stdout; when the
dialogue reaches a set of options, they are numbered and the user is
prompted to choose one by typing its number at the console.

Usage:

	yarnrun [flags] FILE

The flags are:

	-v, --version
		Give the current version of the dialogue engine and then exit.

	-n, --node NODE
		Start at the given node instead of the project's configured start
		node (or "Start" if none is configured).

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading option selections, even if
		launched in a tty with stdin and stdout.

Once a session has started, lines are printed one after another without
waiting for input; type the number of an option to select it. To exit early,
send EOF (ctrl-D).
*/
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dekarrin/yarnspinner"
	"github.com/dekarrin/yarnspinner/internal/config"
	"github.com/dekarrin/yarnspinner/internal/input"
	"github.com/dekarrin/yarnspinner/internal/loader"
	"github.com/dekarrin/yarnspinner/internal/version"
	"github.com/dekarrin/yarnspinner/internal/yarn"
	"github.com/spf13/pflag"
)

const (
	ExitSuccess = iota
	ExitRuntimeError
	ExitInitError
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	flagNode    = pflag.StringP("node", "n", "", "Start node to run, overriding the project default")
	forceDirect = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
)

func main() {
	returnCode := ExitSuccess
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		}
		os.Exit(returnCode)
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	args := pflag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: yarnrun [flags] FILE\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}
	sourcePath := args[0]

	d, startNode, err := loadDialogue(sourcePath, *flagNode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	reader, err := newReader(*forceDirect)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer reader.Close()

	if err := runUntilDone(d, startNode, reader); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitRuntimeError
		return
	}
}

// loadDialogue loads sourcePath as either a .yarnproject.toml manifest or a
// single source container, returning the Dialogue and the start node to
// run.
func loadDialogue(sourcePath, nodeOverride string) (*yarnspinner.Dialogue, string, error) {
	if strings.HasSuffix(sourcePath, ".yarnproject.toml") {
		project, err := config.Load(sourcePath)
		if err != nil {
			return nil, "", fmt.Errorf("load project: %w", err)
		}

		d := yarnspinner.New(nil)
		for _, f := range project.Files {
			if err := d.LoadFile(f); err != nil {
				return nil, "", fmt.Errorf("load %s: %w", f, err)
			}
		}

		startNode := project.StartNode
		if nodeOverride != "" {
			startNode = nodeOverride
		}
		return d, startNode, nil
	}

	d := yarnspinner.New(nil)
	if err := d.LoadFile(sourcePath); err != nil {
		return nil, "", fmt.Errorf("load %s: %w", sourcePath, err)
	}
	return d, nodeOverride, nil
}

type commandReader interface {
	ReadCommand() (string, error)
	Close() error
}

// newReader picks an interactive (readline-backed) or direct command
// reader: readline is only attempted when the caller hasn't forced direct
// mode.
func newReader(forceDirect bool) (commandReader, error) {
	useReadline := !forceDirect
	if useReadline {
		icr, err := input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("init readline: %w", err)
		}
		icr.AllowBlank(true)
		return icr, nil
	}
	dcr := input.NewDirectReader(os.Stdin)
	dcr.AllowBlank(true)
	return dcr, nil
}

// runUntilDone drives d from startNode to completion, printing lines and
// commands and prompting the user to choose among any options offered.
func runUntilDone(d *yarnspinner.Dialogue, startNode string, reader commandReader) error {
	if err := d.Run(startNode); err != nil {
		return fmt.Errorf("start dialogue: %w", err)
	}

	for d.State() != yarn.Stopped {
		ev := d.Next()
		if ev.Err != nil {
			return ev.Err
		}

		switch {
		case ev.Line != nil:
			fmt.Println(ev.Line.Text)
		case ev.Command != nil:
			fmt.Printf("<<%s>>\n", ev.Command.Text)
		case ev.Options != nil:
			choice, err := promptForOption(ev.Options.Options, reader)
			if err != nil {
				return err
			}
			if err := d.SelectOption(choice); err != nil {
				return fmt.Errorf("select option: %w", err)
			}
		case ev.NodeComplete != nil:
			// nothing to print; RunNext will either move into the next node
			// or report Stopped on the next loop check.
		}
	}

	return nil
}

func promptForOption(options []yarn.Option, reader commandReader) (int, error) {
	for i, opt := range options {
		if !opt.Available {
			continue
		}
		fmt.Printf("%d) %s\n", i+1, opt.Text)
	}

	for {
		line, err := reader.ReadCommand()
		if err != nil {
			return 0, fmt.Errorf("read option choice: %w", err)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || choice < 1 || choice > len(options) || !options[choice-1].Available {
			fmt.Println("Please enter the number of an available option.")
			continue
		}
		return choice - 1, nil
	}
}
