package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
)

const (
	// IngestSubject carries single-claim updates.
	IngestSubject = "claims.ingest"
	// DLQSubject receives messages that exhausted their retries.
	DLQSubject = "claims.ingest.dlq"
	// MaxRetries before a message goes to the DLQ.
	MaxRetries = 3
)

// Message is a single claim update published to IngestSubject. The ordinal
// keys the document id, so republishing the same ordinal overwrites.
type Message struct {
	Claim   domain.Claim `json:"claim"`
	Ordinal int          `json:"ordinal"`
}

// dlqMessage is published to the DLQ on repeated failure.
type dlqMessage struct {
	Message Message `json:"message"`
	Error   string  `json:"error"`
	Retries int     `json:"retries"`
}

// StartConsumer subscribes to IngestSubject and runs each claim through the
// ingestion pipeline with retry and DLQ support. Unlike a bulk reload it
// upserts into the existing collection.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	pipeline := NewPipeline(deps)
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return nc.Subscribe(IngestSubject, func(msg *nats.Msg) {
		var m Message
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			log.Error("ingest: unmarshal failed", "error", err)
			return
		}

		retries := 0
		if msg.Header != nil {
			if v := msg.Header.Get("X-Retry-Count"); v != "" {
				fmt.Sscanf(v, "%d", &retries)
			}
		}

		result := pipeline(context.Background(), Row{Claim: m.Claim, Ordinal: m.Ordinal})
		if result.IsErr() {
			_, pipeErr := result.Unwrap()
			retries++
			log.Error("ingest: pipeline failed",
				"error", pipeErr,
				"ordinal", m.Ordinal,
				"retry", retries,
			)

			if retries >= MaxRetries {
				dlq := dlqMessage{Message: m, Error: pipeErr.Error(), Retries: retries}
				data, _ := json.Marshal(dlq)
				if err := nc.Publish(DLQSubject, data); err != nil {
					log.Error("ingest: DLQ publish failed", "error", err)
				}
				return
			}

			retryMsg := nats.NewMsg(IngestSubject)
			retryMsg.Data = msg.Data
			retryMsg.Header = nats.Header{}
			retryMsg.Header.Set("X-Retry-Count", fmt.Sprintf("%d", retries))
			if err := nc.PublishMsg(retryMsg); err != nil {
				log.Error("ingest: retry publish failed", "error", err)
			}
			return
		}

		docID, _ := result.Unwrap()
		log.Info("ingest: claim stored", "claim_id", docID)
	})
}
