package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/workmesh/talentrag/internal/config"
	"github.com/workmesh/talentrag/internal/domain"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <domain> <file.json>",
		Short: "Queue a source object for ingestion",
		Long: "Read a JSON-encoded source object (job posting, company profile, " +
			"learning resource, or FAQ entry) and enqueue it for the background worker",
		Args: cobra.ExactArgs(2),
		RunE: runIngest,
	}

	cmd.Flags().Bool("now", false, "Ingest synchronously instead of enqueueing")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	d := domain.SearchDomain(args[0])
	if !domain.IsValidSearchDomain(d) {
		return fmt.Errorf("unknown domain %q (expected one of: %s, %s, %s, %s)",
			args[0], domain.DomainJob, domain.DomainCompany, domain.DomainLearning, domain.DomainFAQ)
	}

	payload, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read payload file: %w", err)
	}

	sourceID, err := sourceIDFromPayload(payload)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if now, _ := cmd.Flags().GetBool("now"); now {
		if err := app.Ingesters[d].IngestPayload(ctx, payload); err != nil {
			return fmt.Errorf("ingestion failed: %w", err)
		}
		fmt.Printf("ingested %s source %s\n", d, sourceID)
		return nil
	}

	job := &domain.IngestJob{
		ID:        uuid.NewString(),
		Domain:    d,
		SourceID:  sourceID,
		Payload:   payload,
		Status:    domain.IngestJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := app.Queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue ingest job: %w", err)
	}

	fmt.Printf("queued ingest job %s for %s source %s\n", job.ID, d, sourceID)
	return nil
}

func sourceIDFromPayload(payload []byte) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if probe.ID == "" {
		return "", fmt.Errorf("payload is missing the id field")
	}
	return probe.ID, nil
}
