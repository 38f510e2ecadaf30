package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/peterh/liner"

	"github.com/mmoult/expression"
)

var funcNames = []string{"x", "y", "z", "w"}

func funcName(i int) string {
	if i < len(funcNames) {
		return funcNames[i]
	}
	return "a" + strconv.Itoa(i-len(funcNames))
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".tracer_history")
}

func main() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	values := []float64{3.141592653589, 2.718281828459, 0}
	solve := expression.NewSolver([]string{"pi", "e", "t"})
	if err := solve.SetValues(values); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("Function Tracer")
	fmt.Println("Define functions of t, one per line; an empty line or \"quit\" ends the list.")

	var funcs []expression.Expression
	for {
		input, err := line.Prompt(funcName(len(funcs)) + "(t) = ")
		if err != nil || input == "" || input == "quit" {
			break
		}
		line.AppendHistory(input)
		e, err := solve.ParseString(input, true)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		funcs = append(funcs, e)
	}
	if len(funcs) == 0 {
		return
	}

	fmt.Println("Enter values for t; an empty line advances t by 0.1, \"quit\" exits.")
	for {
		input, err := line.Prompt("t = ")
		if err != nil || input == "quit" {
			break
		}
		if input == "" {
			values[2] += 0.1
		} else {
			line.AppendHistory(input)
			t, err := solve.EvalString(input)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			values[2] = t
		}

		fmt.Print("(")
		for i, f := range funcs {
			if i > 0 {
				fmt.Print(", ")
			}
			v, err := solve.Eval(f)
			if err != nil {
				fmt.Print("?")
				continue
			}
			fmt.Print(strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Println(")")
	}
}
