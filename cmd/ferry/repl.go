package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ferryrt/ferry/internal/lit"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell with persistent variables",
	Long: `Start an interactive shell over a fresh object runtime.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)
  - Multi-line input (open brackets continue on the next line)

Session commands:
  :vars          list bound variables
  :live          count live objects in the runtime
  del NAME       release a variable

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.ferry_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".ferry_history")
	}

	logger := newLogger(cmd)
	defer logger.Sync()

	sh := newShell(logger)
	defer sh.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, "ferry shell (type 'exit' to quit, Ctrl+D to exit)")

	var pending strings.Builder

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if pending.Len() > 0 {
					pending.Reset()
					rl.SetPrompt(">>> ")
				}
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			break
		}

		if pending.Len() > 0 {
			pending.WriteString("\n")
			pending.WriteString(line)
			line = pending.String()
		}

		trimmed := strings.TrimSpace(line)
		if pending.Len() == 0 {
			switch trimmed {
			case "":
				continue
			case "exit", "quit":
				return
			case ":vars":
				for _, name := range sh.Vars() {
					out, _ := sh.Eval("repr(" + name + ")")
					fmt.Printf("%s = %s\n", name, strings.Trim(out, "\""))
				}
				continue
			case ":live":
				fmt.Println(sh.Live())
				continue
			}
		}

		out, evalErr := sh.Eval(line)
		if errors.Is(evalErr, lit.ErrIncomplete) {
			pending.Reset()
			pending.WriteString(line)
			rl.SetPrompt("... ")
			continue
		}
		pending.Reset()
		rl.SetPrompt(">>> ")

		if evalErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", evalErr)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
}
