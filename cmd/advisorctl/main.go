package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
)

// Exit codes for different failure modes
const (
	ExitSuccess        = 0
	ExitAnalysisFailed = 1 // the scorer was reached but the analysis failed
	ExitError          = 2 // usage, configuration or local I/O error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, analyze.ErrAnalysisFailed) {
			os.Exit(ExitAnalysisFailed)
		}
		os.Exit(ExitError)
	}
}
