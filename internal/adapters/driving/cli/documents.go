package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouliangjun/rag-project03-audit/internal/core/domain"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage pipeline artifacts",
	Long: `List, inspect, select, or delete the artifacts each pipeline stage
produced. Artifacts live in per-stage namespaces: loaded, chunked,
embedded, indexed.`,
}

var documentsKind string

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List artifacts for a stage",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show artifact details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsSelectCmd = &cobra.Command{
	Use:   "select [name]",
	Short: "Select an artifact as input for the next stage",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsSelect,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete an artifact",
	Long: `Deletes an artifact server-side and locally. Any downstream
selection that referenced the deleted name is cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsDelete,
}

func init() {
	documentsCmd.PersistentFlags().StringVarP(&documentsKind, "kind", "K", string(domain.KindLoaded), "artifact kind (loaded, chunked, embedded, indexed, all)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsSelectCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func artifactKind() (domain.ArtifactKind, error) {
	kind := domain.ArtifactKind(documentsKind)
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown artifact kind %q", domain.ErrInvalidInput, documentsKind)
	}
	return kind, nil
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}
	kind, err := artifactKind()
	if err != nil {
		return err
	}

	docs, err := registryService.List(context.Background(), kind)
	if err != nil {
		return fmt.Errorf("failed to list %s artifacts: %w", kind, err)
	}
	if len(docs) == 0 {
		cmd.Printf("No %s artifacts.\n", kind)
		return nil
	}

	selected := registryService.Selected(kind)
	for i := range docs {
		marker := " "
		if docs[i].Name == selected {
			marker = "*"
		}
		cmd.Printf("  %s %s\n", marker, docs[i].Name)
	}
	cmd.Printf("\nTotal: %d\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}
	kind, err := artifactKind()
	if err != nil {
		return err
	}

	docs, failures := registryService.Hydrate(context.Background(), kind, []string{args[0]})
	for _, f := range failures {
		cmd.Printf("warning: %s: %v\n", f.Name, f.Err)
	}

	for i := range docs {
		if docs[i].Name != args[0] {
			continue
		}
		printDocument(cmd, docs[i])
		return nil
	}
	return fmt.Errorf("%w: %s artifact %q", domain.ErrNotFound, kind, args[0])
}

func printDocument(cmd *cobra.Command, doc domain.Document) {
	cmd.Printf("%s (%s)\n", doc.Name, doc.Kind)
	if doc.TotalPages > 0 {
		cmd.Printf("  Pages:     %d\n", doc.TotalPages)
	}
	if doc.TotalChunks > 0 {
		cmd.Printf("  Chunks:    %d\n", doc.TotalChunks)
	}
	if doc.LoadingMethod != "" {
		cmd.Printf("  Loaded:    %s\n", doc.LoadingMethod)
	}
	if doc.ChunkingMethod != "" {
		cmd.Printf("  Chunked:   %s\n", doc.ChunkingMethod)
	}
	if doc.EmbeddingProvider != "" {
		cmd.Printf("  Embedding: %s/%s (%d dims)\n", doc.EmbeddingProvider, doc.EmbeddingModel, doc.VectorDimension)
	}
	if doc.CollectionName != "" {
		cmd.Printf("  Indexed:   %s/%s (%s, %d vectors)\n", doc.VectorDB, doc.CollectionName, doc.IndexMode, doc.TotalVectors)
	}
	if !doc.Timestamp.IsZero() {
		cmd.Printf("  Created:   %s\n", doc.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

func runDocumentsSelect(cmd *cobra.Command, args []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}
	kind, err := artifactKind()
	if err != nil {
		return err
	}

	// Refresh first so a fresh shell can select without a prior list.
	if _, err := registryService.List(context.Background(), kind); err != nil {
		return fmt.Errorf("failed to list %s artifacts: %w", kind, err)
	}
	if err := registryService.Select(kind, args[0]); err != nil {
		return fmt.Errorf("failed to select %q: %w", args[0], err)
	}

	cmd.Printf("Selected %s artifact: %s\n", kind, args[0])
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if registryService == nil {
		return errors.New("registry service not configured")
	}
	kind, err := artifactKind()
	if err != nil {
		return err
	}

	if err := registryService.Delete(context.Background(), kind, args[0]); err != nil {
		return fmt.Errorf("failed to delete %q: %w", args[0], err)
	}

	cmd.Printf("Deleted %s artifact: %s\n", kind, args[0])
	return nil
}
