// Package cli implements the cobra command tree. Commands talk to the
// core through the driving ports; services are injected once at startup
// via SetServices and held in package-level variables so each command
// file stays self-contained.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driven"
	"github.com/zhouliangjun/rag-project03-audit/internal/core/ports/driving"
	"github.com/zhouliangjun/rag-project03-audit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ragaudit",
	Short: "Control panel for the document processing pipeline",
	Long: `ragaudit drives a document RAG pipeline end to end: load a PDF,
chunk it, embed the chunks, index them into a vector store, then
search, generate answers and evaluate retrieval quality against a
labeled query set.

The processing service does the heavy lifting; ragaudit orchestrates
the stages, tracks the artifacts each stage produced, and keeps a
local history of evaluation runs.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Injected services. Nil until SetServices is called; every RunE guards
// against a missing service so partial wiring fails loudly.
var (
	registryService   driving.RegistryService
	pipelineService   driving.PipelineService
	evaluationService driving.EvaluationService
	historyService    driving.HistoryService
	backendClient     driven.Backend
)

// Services bundles everything the command tree needs.
type Services struct {
	Registry   driving.RegistryService
	Pipeline   driving.PipelineService
	Evaluation driving.EvaluationService
	History    driving.HistoryService
	Backend    driven.Backend
}

// SetServices injects the core services into the command tree.
func SetServices(s Services) {
	registryService = s.Registry
	pipelineService = s.Pipeline
	evaluationService = s.Evaluation
	historyService = s.History
	backendClient = s.Backend
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
