// Command coredb is the teaching-grade relational engine's CLI: run a
// semicolon-delimited SQL script from a file, or drop into an
// interactive REPL when no script path is given.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/coredb/coredb/internal/config"
	"github.com/coredb/coredb/internal/engine"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Default()
	cfg.PagerCapacity = 4 // match the original's small, easy-to-observe demo cache

	eng, err := engine.Open(cfg.DataFile, cfg)
	if err != nil {
		log.Printf("opening engine: %v", err)
		return 1
	}
	defer eng.Close()

	if len(args) > 0 {
		return runScript(eng, args[0])
	}
	runREPL(eng)
	return 0
}

// runScript loads a file, splits it on ';', and runs each non-blank
// statement in order. A missing file is reported and treated as a
// hard failure; a statement execution error is logged and the script
// continues to the next statement.
func runScript(eng *engine.Engine, path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("reading script %q: %v", path, err)
		return 1
	}

	for _, stmt := range strings.Split(string(data), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		executeAndPrint(eng, stmt+";")
	}
	return 0
}

// runREPL reads statements terminated by ';' from stdin until the
// user types "exit"/"quit" or sends EOF.
func runREPL(eng *engine.Engine) {
	sc := bufio.NewScanner(os.Stdin)
	var buf strings.Builder

	fmt.Print("coredb> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(line) {
		case "exit", "quit":
			return
		}

		buf.WriteString(line)
		buf.WriteString(" ")

		if strings.HasSuffix(line, ";") {
			stmt := strings.TrimSpace(buf.String())
			buf.Reset()
			executeAndPrint(eng, stmt)
		}
		fmt.Print("coredb> ")
	}
}

func executeAndPrint(eng *engine.Engine, stmt string) {
	res, err := eng.Execute(stmt)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, row := range res.Rows {
		fmt.Println(row)
	}
}
