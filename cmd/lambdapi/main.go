// Command lambdapi is the CLI entry point of spec.md 4.11: `lambdapi
// check FILE` runs one module's directives through internal/dispatch
// and prints each infer/eval/assert/check result; `lambdapi serve
// :PORT [FILE...]` pre-loads the given modules and starts the
// internal/rpcapi gRPC server on PORT. Driver structure (subcommand
// dispatch on os.Args, one function per subcommand) is grounded on
// cmd/funxy/main.go; terminal color detection on
// internal/evaluator/builtins_term.go's isatty.IsTerminal check.
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"google.golang.org/grpc"

	"github.com/funvibe/lambdapi/internal/config"
	"github.com/funvibe/lambdapi/internal/dispatch"
	"github.com/funvibe/lambdapi/internal/objstore"
	"github.com/funvibe/lambdapi/internal/projectfile"
	"github.com/funvibe/lambdapi/internal/rpcapi"
	"github.com/funvibe/lambdapi/internal/universe"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "check":
		runCheck(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "-help", "--help", "help":
		printUsage()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "lambdapi %s\n\n", config.Version)
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  lambdapi check FILE          load FILE and run its directives")
	fmt.Fprintln(os.Stderr, "  lambdapi serve :PORT [FILE]  pre-load FILEs and serve the RPC API")
}

// colorWriter wraps stderr and adds a yellow ANSI wrapper around
// dispatch's non-fatal check warnings, gated on whether stderr is a
// terminal.
type colorWriter struct {
	w     *os.File
	color bool
}

func (c *colorWriter) Write(p []byte) (int, error) {
	if !c.color {
		return c.w.Write(p)
	}
	buf := append([]byte("\x1b[33m"), p...)
	buf = append(buf, []byte("\x1b[0m")...)
	return c.w.Write(buf)
}

func wantsColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func loadProject(dir string) *projectfile.Config {
	path, err := projectfile.FindConfig(dir)
	if err != nil || path == "" {
		cfg, _ := projectfile.ParseConfig(nil, "<defaults>")
		return cfg
	}
	cfg, err := projectfile.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; using defaults\n", err)
		cfg, _ = projectfile.ParseConfig(nil, "<defaults>")
	}
	return cfg
}

func sourceLoader(cfg *projectfile.Config, projectDir string) dispatch.SourceLoader {
	return func(modulePath string) ([]byte, error) {
		file, ok := cfg.ResolveImport(projectDir, modulePath)
		if !ok {
			return nil, fmt.Errorf("module %q not found under any search path", modulePath)
		}
		return os.ReadFile(file)
	}
}

func runCheck(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: lambdapi check FILE")
		os.Exit(1)
	}
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	projectDir := filepath.Dir(path)
	cfg := loadProject(projectDir)

	var store *objstore.Store
	if cfg.CacheFile != "" {
		store, err = objstore.Open(cfg.CacheFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: opening object cache %s: %v\n", cfg.CacheFile, err)
		} else {
			defer store.Close()
		}
	}

	var warn io.Writer = &colorWriter{w: os.Stderr, color: wantsColor(os.Stderr)}
	if cfg.QuietChecks {
		warn = nil
	}
	d := dispatch.New(universe.New(), cfg.StepBudget, sourceLoader(cfg, projectDir), warn)

	modulePath := config.TrimSourceExt(filepath.Base(path))
	m, results, err := d.Load(modulePath, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, r := range results {
		printResult(r)
	}

	if store != nil {
		key := objstore.Key(m.Path, src)
		if err := store.Store(key, m.Table); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching %s: %v\n", m.Path, err)
		}
	}
}

func printResult(r dispatch.Result) {
	switch r.Kind {
	case "infer":
		fmt.Printf("%s: infer => %s\n", r.Pos, r.Term)
	case "eval":
		fmt.Printf("%s: eval => %s\n", r.Pos, r.Term)
	case "assert":
		fmt.Printf("%s: assert ok\n", r.Pos)
	case "check":
		if r.Warning != "" {
			fmt.Printf("%s: check failed: %s\n", r.Pos, r.Warning)
		} else {
			fmt.Printf("%s: check ok\n", r.Pos)
		}
	}
}

func runServe(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: lambdapi serve :PORT [FILE...]")
		os.Exit(1)
	}
	addr := args[0]
	files := args[1:]

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadProject(cwd)
	var warn io.Writer = os.Stderr
	if cfg.QuietChecks {
		warn = nil
	}
	d := dispatch.New(universe.New(), cfg.StepBudget, sourceLoader(cfg, cwd), warn)

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		modulePath := config.TrimSourceExt(filepath.Base(file))
		if _, results, err := d.Load(modulePath, src); err != nil {
			fmt.Fprintf(os.Stderr, "error loading %s: %v\n", file, err)
			os.Exit(1)
		} else {
			for _, r := range results {
				printResult(r)
			}
		}
	}

	srv, err := rpcapi.NewServer(d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	gs := grpc.NewServer()
	srv.Register(gs)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("lambdapi serving on %s\n", addr)
	if err := gs.Serve(lis); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
