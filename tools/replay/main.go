// Command replay checks a recorded analysis workflow history against the
// current workflow code. Any non-determinism introduced by a code change
// surfaces as a replay failure before it ships.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/workflows"
)

func main() {
	historyPath := flag.String("history", "", "path to workflow history JSON (from temporal workflow show --output json)")
	flag.Parse()

	if *historyPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -history /path/to/history.json")
		os.Exit(2)
	}

	replayer := worker.NewWorkflowReplayer()
	replayer.RegisterWorkflowWithOptions(workflows.AnalysisWorkflow,
		workflow.RegisterOptions{Name: "AnalysisWorkflow"})

	if err := replayer.ReplayWorkflowHistoryFromJSONFile(nil, *historyPath); err != nil {
		log.Fatalf("replay failed (non-deterministic change or invalid history): %v", err)
	}
	log.Printf("replay succeeded for %s", *historyPath)
}
