package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/docsource"
	"github.com/dgallion1/docrank/internal/embeddings"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	inputDir   string
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Persona-driven document section ranking",
	Long: `docrank reads a document collection plus a persona and task, and ranks
the most relevant sections and passages for that persona's job.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a document collection",
	Long: `Run the full analysis offline. The input directory must contain a
request.json describing the persona and task; documents are taken from
the request's document list or, if absent, from every supported file in
the directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVarP(&inputDir, "input", "i", ".", "Input directory with request.json and documents")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "output.json", "Output file for the analysis result")
	rootCmd.AddCommand(runCmd)
}

// analysisRequest is the on-disk request format.
type analysisRequest struct {
	Persona struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
	Documents []struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
	} `json:"documents"`
}

func runAnalysis(ctx context.Context) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load()

	reqData, err := os.ReadFile(filepath.Join(inputDir, "request.json"))
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}
	var req analysisRequest
	if err := json.Unmarshal(reqData, &req); err != nil {
		return fmt.Errorf("parsing request: %w", err)
	}

	docs, err := collectDocuments(req)
	if err != nil {
		return err
	}

	provider, err := embeddings.NewFastEmbedProvider(embeddings.FastEmbedConfig{
		Model:    cfg.EmbedModel,
		CacheDir: cfg.EmbedCacheDir,
	})
	if err != nil {
		return fmt.Errorf("initializing embeddings: %w", err)
	}
	defer provider.Close()

	engine := pipeline.NewEngine(cfg, provider, log)

	start := time.Now()
	result, err := engine.Run(ctx, req.Persona.Role, req.JobToBeDone.Task, docs, pipeline.Hooks{
		Phase: func(phase string) {
			log.Info("phase", "phase", phase)
		},
		DocSkipped: func(name string, err error) {
			log.Warn("document skipped", "file", name, "error", err)
		},
	})
	if err != nil {
		return err
	}
	log.Info("analysis complete",
		"documents", len(docs),
		"ranked_sections", len(result.ExtractedSections),
		"subsections", len(result.SubsectionAnalysis),
		"duration", time.Since(start).Round(time.Millisecond))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := os.WriteFile(outputPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// collectDocuments loads the documents named in the request, or every
// supported file in the input directory when the request lists none.
func collectDocuments(req analysisRequest) ([]pipeline.InputDocument, error) {
	var names []string
	if len(req.Documents) > 0 {
		for _, d := range req.Documents {
			names = append(names, d.Filename)
		}
	} else {
		entries, err := os.ReadDir(inputDir)
		if err != nil {
			return nil, fmt.Errorf("reading input directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || e.Name() == "request.json" {
				continue
			}
			if docsource.IsSupportedExtension(e.Name()) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
	}

	var docs []pipeline.InputDocument
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(inputDir, name))
		if err != nil {
			return nil, fmt.Errorf("reading document %s: %w", name, err)
		}
		docs = append(docs, pipeline.InputDocument{Filename: name, Data: data})
	}
	return docs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
