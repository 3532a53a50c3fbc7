// Package notify turns storage upload events into notification messages.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/kylejryan/artisan-request-portal/internal/logging"
)

// Subject is the fixed subject line of every upload notification.
const Subject = "Artisan S3 Upload Notification - You Have A New Job"

// ErrNoRecords is returned for an event without any notification record.
var ErrNoRecords = errors.New("notify: event has no records")

// Publisher sends one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic, subject, body string) error
}

// Response is the Lambda result returned after a successful publish.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// UploadEvent is an S3 notification payload. It differs from events.S3Event
// only in keeping eventTime as the raw string S3 sent.
type UploadEvent struct {
	Records []UploadRecord `json:"Records"`
}

// UploadRecord is one notification record.
type UploadRecord struct {
	EventName string          `json:"eventName"`
	EventTime string          `json:"eventTime"`
	S3        events.S3Entity `json:"s3"`
}

// Upload is the part of an upload event the message is built from.
type Upload struct {
	Bucket    string
	Key       string
	EventName string
	EventTime string
}

// Handler publishes a summary of each upload event to a single topic.
type Handler struct {
	pub   Publisher
	topic string
	log   *slog.Logger
}

// NewHandler returns a Handler publishing to topic.
func NewHandler(pub Publisher, topic string, log *slog.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{pub: pub, topic: topic, log: log}
}

// Handle publishes the first record of ev. Publish failures are returned so
// the invoking platform's retry policy applies.
func (h *Handler) Handle(ctx context.Context, ev UploadEvent) (Response, error) {
	if len(ev.Records) == 0 {
		return Response{}, ErrNoRecords
	}
	up := FromRecord(ev.Records[0])

	if err := h.pub.Publish(ctx, h.topic, Subject, Message(up)); err != nil {
		h.log.Error("publish upload notification", "bucket", up.Bucket, "key", up.Key, "error", err)
		return Response{}, fmt.Errorf("publish to %s: %w", h.topic, err)
	}
	h.log.Info("upload notification sent", "bucket", up.Bucket, "key", up.Key, "event", up.EventName)

	body, _ := json.Marshal("Notification sent successfully")
	return Response{StatusCode: http.StatusOK, Body: string(body)}, nil
}

// FromRecord extracts the upload fields. The key and event time are passed
// through exactly as the event carries them.
func FromRecord(rec UploadRecord) Upload {
	return Upload{
		Bucket:    rec.S3.Bucket.Name,
		Key:       rec.S3.Object.Key,
		EventName: rec.EventName,
		EventTime: rec.EventTime,
	}
}

// Message renders the notification body.
func Message(up Upload) string {
	return fmt.Sprintf("New S3 Event\nEvent: %s\nTime: %s\nBucket: %s\nObject Key: %s",
		up.EventName, up.EventTime, up.Bucket, up.Key)
}
