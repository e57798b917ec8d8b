package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gamestate/internal/config"
	"gamestate/internal/game"
	"gamestate/internal/scenario"
	"gamestate/internal/sheet"
	"gamestate/internal/steps"
	"gamestate/internal/tui"
)

const usage = `usage: gamestate [play|run|dump|sheet]

  play   step through the scenario in the terminal (default)
  run    play the scenario headless and print the event log
  dump   print the starting objects as YAML
  sheet  play headless and write the final inventory as a PDF

GAMESTATE_SCENARIO, GAMESTATE_SHEET, GAMESTATE_LOG, GAMESTATE_AUTO_PICK and
GAMESTATE_UNDO_DEPTH configure the run.`

var errUsage = errors.New("unknown command")

func main() {
	cmd := "play"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if err := run(cmd, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(cmd string, stdout io.Writer) error {
	switch cmd {
	case "play", "run", "dump", "sheet":
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("%q: %w", cmd, errUsage)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	sc, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}
	world, err := sc.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Scenario, err)
	}
	start, err := world.Start()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Scenario, err)
	}
	start = start.WithLogger(logger)

	title := sc.Title
	if title == "" {
		title = cfg.Scenario
	}

	switch cmd {
	case "play":
		_, err := tui.Run(title, start, cfg.UndoDepth)
		return err
	case "run":
		final, err := scenario.Autoplay(start, picker(cfg.AutoPick))
		printEvents(stdout, final)
		if err != nil {
			return err
		}
		if final.IsWaitingForChoice() {
			ch, _ := final.PendingChoice()
			fmt.Fprintf(stdout, "stopped at choice: %s\n", ch.Prompt)
		}
	case "dump":
		b, err := scenario.Dump(start)
		if err != nil {
			return err
		}
		_, err = stdout.Write(b)
		return err
	case "sheet":
		final, err := scenario.Autoplay(start, picker(cfg.AutoPick))
		if err != nil {
			return err
		}
		b, err := sheet.GenerateState(final, title)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Sheet, b, 0o600); err != nil {
			return err
		}
		logger.Printf("wrote %s (%d bytes)", cfg.Sheet, len(b))
		fmt.Fprintf(stdout, "wrote %s (%d bytes)\n", cfg.Sheet, len(b))
	}
	return nil
}

func picker(auto bool) scenario.Picker {
	if !auto {
		return nil
	}
	return scenario.FirstEnabled
}

func printEvents(w io.Writer, s game.State) {
	for _, e := range s.Events() {
		fmt.Fprintln(w, steps.Describe(e))
	}
}

// openLog is swapped out in tests.
var openLog = openLogFile

func openLogFile(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "engine: ", log.LstdFlags), func() { f.Close() }, nil
}
