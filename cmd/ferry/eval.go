package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ferryrt/ferry/internal/lit"
	"github.com/ferryrt/ferry/object"
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate expressions (one-shot)",
	Long: `Evaluate shell input without an interactive session.

Input can be provided via:
  - File argument: ferry eval script.fy
  - Inline flag: ferry eval -e '[1, 2, 3]'
  - Stdin: echo 'len("abc")' | ferry eval

Each line evaluates like a REPL line; the last expression's value is
printed. With --json the value prints as JSON instead of shell form.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runEval,
}

func init() {
	evalCmd.Flags().StringP("expr", "e", "", "Expression to evaluate")
	evalCmd.Flags().Bool("json", false, "Print the result as JSON")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) {
	expr, _ := cmd.Flags().GetString("expr")
	asJSON, _ := cmd.Flags().GetBool("json")

	var source string
	switch {
	case expr != "":
		source = expr
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			cmd.Help()
			return
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}
	if strings.TrimSpace(source) == "" {
		cmd.Help()
		return
	}

	logger := newLogger(cmd)
	defer logger.Sync()

	sh := newShell(logger)
	defer sh.Close()

	out, err := evalSource(sh, source, asJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
}

// evalSource runs every input line through the shell, joining lines
// that the parser reports incomplete, and returns the last non-empty
// output.
func evalSource(sh *shell, source string, asJSON bool) (string, error) {
	var last string
	var pending strings.Builder

	sc := bufio.NewScanner(strings.NewReader(source))
	for sc.Scan() {
		line := sc.Text()
		if pending.Len() > 0 {
			pending.WriteString("\n")
			pending.WriteString(line)
			line = pending.String()
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		out, err := sh.Eval(line)
		if errors.Is(err, lit.ErrIncomplete) {
			pending.Reset()
			pending.WriteString(line)
			continue
		}
		pending.Reset()
		if err != nil {
			return "", err
		}
		if out != "" {
			last = out
		}
		if asJSON {
			if j, ok := jsonLine(sh, line); ok {
				last = j
			}
		}
	}
	if pending.Len() > 0 {
		return "", lit.ErrIncomplete
	}
	return last, nil
}

// jsonLine re-evaluates an expression line and renders the value as
// JSON. Assignments and deletions have no value and report false.
func jsonLine(sh *shell, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if _, _, ok := splitAssign(line); ok {
		return "", false
	}
	if strings.HasPrefix(line, "del ") {
		return "", false
	}
	g := sh.rt.Lock()
	defer g.Unlock()
	o, err := sh.evalExpr(g, line)
	if err != nil || o == nil {
		return "", false
	}
	defer o.Release(g)
	v := jsonValue(g, sh.rt, o)
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// jsonValue maps a host object to the nearest JSON shape. Sets and
// tuples flatten to arrays, non-string dict keys render through Repr,
// and opaque kinds fall back to their repr text.
func jsonValue(g *object.Guard, rt *object.Runtime, o *object.Object) any {
	switch o.Kind() {
	case object.KindNone:
		return nil
	case object.KindBool:
		return o.IsTrue()
	case object.KindInt:
		if n, ok := o.AsInt64(); ok {
			return n
		}
		b, _ := o.AsBigInt()
		return b.String()
	case object.KindFloat:
		f, _ := o.AsFloat()
		return f
	case object.KindStr:
		s, _ := o.AsStr()
		return s
	case object.KindBytes:
		b, _ := o.AsBytes()
		return string(b)
	case object.KindList, object.KindTuple:
		n, _ := rt.SeqLen(g, o)
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			el, _ := rt.SeqAt(g, o, i)
			out = append(out, jsonValue(g, rt, el))
		}
		return out
	case object.KindSet:
		var out []any
		it, _ := rt.Iter(g, o)
		defer it.Release(g)
		for {
			el := rt.Next(g, it)
			if el == nil {
				return out
			}
			out = append(out, jsonValue(g, rt, el))
			el.Release(g)
		}
	case object.KindDict:
		out := make(map[string]any)
		items, _ := rt.Items(g, o)
		defer items.Release(g)
		n, _ := rt.SeqLen(g, items)
		for i := 0; i < n; i++ {
			pair, _ := rt.SeqAt(g, items, i)
			k, _ := rt.SeqAt(g, pair, 0)
			v, _ := rt.SeqAt(g, pair, 1)
			key, ok := k.AsStr()
			if !ok {
				key = rt.Repr(g, k)
			}
			out[key] = jsonValue(g, rt, v)
		}
		return out
	}
	return rt.Repr(g, o)
}
