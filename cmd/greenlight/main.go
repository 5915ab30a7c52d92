package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Checks passed / status not red
	ExitCheckFailed = 1 // One or more checks failed, or the cohort is red
	ExitError       = 2 // Configuration or runtime error
)

// CheckFailureError indicates evaluation ran successfully but produced a
// failing outcome.
type CheckFailureError struct {
	Message string
}

func (e *CheckFailureError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var failure *CheckFailureError
		if errors.As(err, &failure) {
			os.Exit(ExitCheckFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
