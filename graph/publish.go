// Package graph publishes expanded value sets to the knowledge graph
// over NATS. Publishing is optional: a nil connection skips it, so the
// CLI degrades gracefully when no NATS URL is configured.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ontokit/vskit/expand"
)

// DefaultSubject is the subject for value-set ingestion.
const DefaultSubject = "graph.ingest.valueset"

// ValueSetEntityID builds the entity ID for an expanded enum.
func ValueSetEntityID(enum string) string {
	return fmt.Sprintf("vskit.local.valueset.%s", enum)
}

// PublishReport publishes every expanded enum in the report. Failed
// enums are not published. Returns the first publish error.
func PublishReport(ctx context.Context, nc *nats.Conn, subject string, report *expand.Report) error {
	if nc == nil {
		return nil // Skip publishing if no NATS connection (graceful degradation)
	}
	if subject == "" {
		subject = DefaultSubject
	}

	for _, res := range report.Expanded {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload := newPayload(report.RunID, res.Enum, res.Records)
		if err := payload.Validate(); err != nil {
			return fmt.Errorf("value set %s: %w", res.Enum, err)
		}
		data, err := payload.Marshal()
		if err != nil {
			return fmt.Errorf("marshal value set %s: %w", res.Enum, err)
		}
		if err := nc.Publish(subject, data); err != nil {
			return fmt.Errorf("publish value set %s: %w", res.Enum, err)
		}
	}

	if err := nc.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("flush value set publishes: %w", err)
	}
	return nil
}
