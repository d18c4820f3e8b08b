package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/pdc-service/internal/config"
	"github.com/spec-kit/pdc-service/internal/domain"
	"github.com/spec-kit/pdc-service/internal/observability"
	"github.com/spec-kit/pdc-service/internal/worker"
	apperrors "github.com/spec-kit/pdc-service/pkg/util/errorutil"
)

// Alert channels.
const (
	ChannelLog     = "log"
	ChannelWebhook = "webhook"
	ChannelEmail   = "email"
)

type mailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationService tells operators about oversized changesets.
type NotificationService struct {
	queue    Enqueuer
	logger   *zap.Logger
	metrics  *observability.Metrics
	cfg      config.NotificationConfig
	client   *http.Client
	sendMail mailFunc
}

// NewNotificationService creates the service.
func NewNotificationService(queue Enqueuer, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		queue:    queue,
		logger:   logger.Named("alerts"),
		metrics:  metrics,
		cfg:      cfg,
		client:   http.DefaultClient,
		sendMail: smtp.SendMail,
	}
}

// AnnounceChangeset schedules alert delivery on every configured channel.
func (n *NotificationService) AnnounceChangeset(ctx context.Context, alert domain.SizeAlert) {
	dispatch(ctx, n.queue, worker.Job{
		Name:        "changeset_alert",
		ChangesetID: alert.ChangesetID,
		Run: func(ctx context.Context) error {
			return n.Deliver(ctx, alert)
		},
	}, n.logger)
}

// Deliver sends alert synchronously. Every failed channel is logged and the
// failures are returned joined as *errorutil.AlertDeliveryError values.
func (n *NotificationService) Deliver(ctx context.Context, alert domain.SizeAlert) error {
	n.logger.Warn("changeset exceeds announce threshold",
		zap.Int64("changeset_id", alert.ChangesetID),
		zap.Int("change_count", alert.ChangeCount),
		zap.Int("threshold", alert.Threshold),
		zap.String("author", alert.Author),
		zap.Strings("models", alert.Models),
	)
	n.metrics.AlertSent(ChannelLog)

	var errs []error
	if strings.TrimSpace(n.cfg.WebhookURL) != "" {
		errs = append(errs, n.report(alert, ChannelWebhook, n.postWebhook(ctx, alert)))
	}
	if n.cfg.SMTPAddr != "" && len(n.cfg.AdminEmails) > 0 {
		errs = append(errs, n.report(alert, ChannelEmail, n.mailAdmins(alert)))
	}
	return errors.Join(errs...)
}

func (n *NotificationService) report(alert domain.SizeAlert, channel string, err error) error {
	if err == nil {
		n.metrics.AlertSent(channel)
		return nil
	}
	n.metrics.AlertFailed(channel)
	n.logger.Error("changeset alert delivery failed",
		zap.Int64("changeset_id", alert.ChangesetID),
		zap.String("channel", channel),
		zap.Int("change_count", alert.ChangeCount),
		zap.Error(err),
	)
	return &apperrors.AlertDeliveryError{ChangesetID: alert.ChangesetID, Channel: channel, Err: err}
}

type webhookBody struct {
	ChangesetID int64  `json:"changeset_id"`
	ChangeCount int    `json:"change_count"`
	Author      string `json:"author"`
}

func (n *NotificationService) postWebhook(ctx context.Context, alert domain.SizeAlert) error {
	body, err := json.Marshal(webhookBody{ChangesetID: alert.ChangesetID, ChangeCount: alert.ChangeCount, Author: alert.Author})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook responded %s", resp.Status)
	}
	return nil
}

func (n *NotificationService) mailAdmins(alert domain.SizeAlert) error {
	subject := fmt.Sprintf("%s Changeset %d has %d changes", n.cfg.SubjectPrefix, alert.ChangesetID, alert.ChangeCount)
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.EmailFrom)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.cfg.AdminEmails, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", strings.TrimSpace(subject))
	fmt.Fprintf(&msg, "Changeset %d by %s was committed at %s with %d changes (threshold %d).\r\n",
		alert.ChangesetID, alert.Author, alert.CommittedAt.Format("2006-01-02 15:04:05 MST"), alert.ChangeCount, alert.Threshold)
	if len(alert.Models) > 0 {
		fmt.Fprintf(&msg, "Touched models: %s\r\n", strings.Join(alert.Models, ", "))
	}
	return n.sendMail(n.cfg.SMTPAddr, nil, n.cfg.EmailFrom, n.cfg.AdminEmails, []byte(msg.String()))
}
