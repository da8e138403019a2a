package testutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// HelperEnv marks a re-executed test binary as a helper child process.
const HelperEnv = "GO_TEST_MODE=helper"

// HelperCommand returns the path and arguments that re-execute the current
// test binary as a helper running the named behaviour. The child must be
// started with HelperEnv in its environment, and the package's TestMain must
// call RunHelperIfRequested.
func HelperCommand(name string, args ...string) (string, []string) {
	return os.Args[0], append([]string{"-test.run=^$", "--", name}, args...)
}

// RunHelperIfRequested runs the helper behaviour and exits, when the process
// was started via HelperCommand. Otherwise it returns immediately.
func RunHelperIfRequested() {
	if os.Getenv("GO_TEST_MODE") != "helper" {
		return
	}
	os.Exit(runHelper(helperArgs(os.Args)))
}

func helperArgs(argv []string) []string {
	for i, arg := range argv {
		if arg == "--" {
			return argv[i+1:]
		}
	}
	return nil
}

func runHelper(args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "helper: no command")
		return 2
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "echo":
		_, _ = fmt.Println(strings.Join(args, " "))
	case "ansi":
		_, _ = fmt.Print("\x1b[1;31mHello Red\x1b[0m and \x1b[32mgreen\x1b[0m\n")
	case "stderr":
		_, _ = fmt.Fprintln(os.Stderr, strings.Join(args, " "))
	case "exit":
		code, err := strconv.Atoi(firstOr(args, "0"))
		if err != nil {
			return 2
		}
		_, _ = fmt.Println("exiting")
		return code
	case "late":
		d, err := time.ParseDuration(firstOr(args, "100ms"))
		if err != nil {
			return 2
		}
		time.Sleep(d)
		_, _ = fmt.Println("late output")
	case "size":
		w, h, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			_, _ = fmt.Printf("size error: %v\n", err)
			return 1
		}
		_, _ = fmt.Printf("cols=%d rows=%d\n", w, h)
	case "lines":
		n, err := strconv.Atoi(firstOr(args, "10"))
		if err != nil {
			return 2
		}
		for i := 0; i < n; i++ {
			_, _ = fmt.Printf("line %d\n", i)
		}
	default:
		_, _ = fmt.Fprintf(os.Stderr, "helper: unknown command %q\n", cmd)
		return 2
	}
	return 0
}

func firstOr(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0]
}
