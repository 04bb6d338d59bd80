// Package cliutil holds the small pieces shared by the three CLI
// entry points (analyze-trip, evaluate, evaluate-range): the
// single-JSON-error-line-on-stderr failure convention spec §6/§7
// requires of every fatal run.
package cliutil

import (
	"encoding/json"
	"fmt"
	"os"
)

// errLine is the wire shape of the one JSON error line a fatal run
// writes to stderr (spec §6 "Exit 0 on success, 1 on any error with a
// single JSON error line on stderr"; spec §7 "all fatal payloads
// include a single `detail` string").
type errLine struct {
	Detail string `json:"detail"`
}

// Fail writes a single `{"detail": "..."}` JSON line to stderr and
// exits the process with status 1.
func Fail(err error) {
	line, marshalErr := json.Marshal(errLine{Detail: err.Error()})
	if marshalErr != nil {
		line = []byte(`{"detail": "internal error formatting failure"}`)
	}
	fmt.Fprintln(os.Stderr, string(line))
	os.Exit(1)
}

// FailMsg is Fail for a plain string, for argument/usage errors that
// never wrapped one of internal/errs's sentinels.
func FailMsg(format string, args ...interface{}) {
	Fail(fmt.Errorf(format, args...))
}

// PrintJSON marshals v indented and writes it to stdout, one call per
// run (spec §6 output conventions: the reference CLI always emits its
// result payload to stdout on success).
func PrintJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
