package worker

// email_worker.go
// Processes close-report jobs from QueueCloseReport: renders a short summary
// of the automatically closed register and mails it to the supervisor inbox.
// SMTP calls go through the circuit breaker so a downed relay is not hammered;
// failed jobs are re-enqueued with a bounded attempt count before the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"tillpoint/internal/infra"
)

const MaxCloseReportRetries = 3

// CloseReportPayload is the job envelope sent to QueueCloseReport.
type CloseReportPayload struct {
	ToEmail        string `json:"to_email"`
	RegisterID     string `json:"register_id"`
	OpenedBy       string `json:"opened_by"`
	OpeningBalance string `json:"opening_balance"`
	ClosingBalance string `json:"closing_balance"`
	Cutoff         string `json:"cutoff"`
}

// EmailWorker sends close-report emails via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, rdb: rdb}
}

// Process sends the close report, re-enqueueing on failure up to
// MaxCloseReportRetries before moving the job to the dead letter queue.
func (w *EmailWorker) Process(ctx context.Context, job Job) {
	var payload CloseReportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}

	subject := fmt.Sprintf("Register %s closed automatically at %s", payload.RegisterID, payload.Cutoff)
	body := fmt.Sprintf(
		"Register %s (opened by %s) was closed automatically at the %s cutoff.\n"+
			"Opening balance: %s\nClosing balance: %s\n",
		payload.RegisterID, payload.OpenedBy, payload.Cutoff,
		payload.OpeningBalance, payload.ClosingBalance)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, subject, body, "")
	})
	if err == nil {
		log.Info().Str("to", payload.ToEmail).Str("register_id", payload.RegisterID).
			Msg("email_worker: close report sent")
		return
	}

	job.Attempts++
	if job.Attempts >= MaxCloseReportRetries {
		SendToDLQ(ctx, w.rdb, QueueCloseReport, job.Type, job.Payload,
			fmt.Sprintf("max retries (%d) exceeded: %s", MaxCloseReportRetries, err), job.Attempts)
		return
	}

	log.Warn().Err(err).Int("attempts", job.Attempts).
		Msg("email_worker: send failed, re-enqueueing")
	encoded, merr := json.Marshal(job)
	if merr != nil {
		log.Error().Err(merr).Msg("email_worker: failed to re-marshal job")
		return
	}
	if rerr := w.rdb.LPush(ctx, QueueCloseReport, encoded).Err(); rerr != nil {
		log.Error().Err(rerr).Msg("email_worker: failed to re-enqueue job")
	}
}
