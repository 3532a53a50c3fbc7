// Package intake validates service request submissions and persists them.
//
// A submission runs in a fixed order: optional attachment upload to the object
// store, then a single insert into the metadata store. There is no retry and no
// compensation; an attachment uploaded before a failed insert stays in the bucket.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kylejryan/artisan-request-portal/internal/ddb"
	"github.com/kylejryan/artisan-request-portal/internal/logging"
	"github.com/kylejryan/artisan-request-portal/internal/models"
	"github.com/kylejryan/artisan-request-portal/internal/s3io"
	"github.com/kylejryan/artisan-request-portal/internal/validate"
)

// Identity is the authenticated caller. It always comes from the verified
// session, never from submitted form fields.
type Identity struct {
	Username string
}

// Present reports whether the caller is authenticated.
func (i Identity) Present() bool { return strings.TrimSpace(i.Username) != "" }

// Form holds the submitted fields.
type Form struct {
	Email         string
	Address       string
	ContactNumber string
	ServiceTitle  string
	ArtisanName   string
	Description   string
}

// Attachment is an optional file sent with a submission.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ObjectStore stores attachment bytes and returns the stored key.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// RecordStore appends one service request record.
type RecordStore interface {
	Insert(ctx context.Context, r models.ServiceRequest) error
}

// Service is the request intake handler.
type Service struct {
	objects ObjectStore
	records RecordStore
	log     *slog.Logger
	obs     Observer
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for submission diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.obs = o
		}
	}
}

// WithClock overrides the time source used for request_date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the intake handler to its two stores.
func NewService(objects ObjectStore, records RecordStore, opts ...Option) *Service {
	s := &Service{
		objects: objects,
		records: records,
		log:     logging.Discard(),
		obs:     nopObserver{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and persists one service request. It returns
// ErrUnauthenticated, a *ValidationError, or a *StageError (which matches
// ErrSubmissionFailed); no store is called unless identity and fields check out.
func (s *Service) Submit(ctx context.Context, id Identity, form Form, file *Attachment) (models.ServiceRequest, error) {
	start := time.Now()

	if !id.Present() {
		s.obs.RecordSubmission(OutcomeUnauthenticated, time.Since(start))
		return models.ServiceRequest{}, ErrUnauthenticated
	}

	missing := validate.Missing(
		validate.Field{Name: "email", Value: form.Email},
		validate.Field{Name: "service_title", Value: form.ServiceTitle},
		validate.Field{Name: "artisan_name", Value: form.ArtisanName},
		validate.Field{Name: "address", Value: form.Address},
		validate.Field{Name: "description", Value: form.Description},
	)
	if len(missing) > 0 {
		s.log.Info("service request rejected", "username", id.Username, "missing", missing)
		s.obs.RecordSubmission(OutcomeInvalid, time.Since(start))
		return models.ServiceRequest{}, &ValidationError{Missing: missing}
	}

	log := s.log.With("submission_id", ulid.Make().String(), "username", id.Username)
	log.Info("service request received",
		"email", form.Email,
		"service_title", form.ServiceTitle,
		"artisan_name", form.ArtisanName,
		"address", form.Address,
		"contact_number", form.ContactNumber,
		"description", form.Description,
		"has_attachment", file != nil,
	)

	rec, err := s.persist(ctx, log, id, form, file)
	if err != nil {
		var se *StageError
		if !errors.As(err, &se) {
			se = &StageError{Stage: StageRecord, Err: err}
		}
		stack := se.Stack
		if stack == nil {
			stack = debug.Stack()
		}
		log.Error("service request failed",
			"stage", se.Stage,
			"error", se.Err.Error(),
			"error_type", fmt.Sprintf("%T", se.Err),
			"stack", string(stack),
		)
		outcome := OutcomeRecordFailed
		if se.Stage == StageUpload {
			outcome = OutcomeUploadFailed
		}
		s.obs.RecordSubmission(outcome, time.Since(start))
		return models.ServiceRequest{}, se
	}

	log.Info("service request stored", "request_date", rec.RequestDate)
	s.obs.RecordSubmission(OutcomeAccepted, time.Since(start))
	return rec, nil
}

// persist performs the upload and insert. A panic from either store is
// converted into a StageError for the stage it happened in.
func (s *Service) persist(ctx context.Context, log *slog.Logger, id Identity, form Form, file *Attachment) (rec models.ServiceRequest, err error) {
	stage := StageUpload
	defer func() {
		if r := recover(); r != nil {
			rec = models.ServiceRequest{}
			err = &StageError{Stage: stage, Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()

	var imageKey *string
	if file != nil {
		name := s3io.SanitizeFilename(file.Filename)
		log.Info("uploading attachment", "filename", name, "size", file.Size)

		key, err := s.objects.Put(ctx, name, file.Body, file.Size, file.ContentType)
		s.obs.RecordUpload(file.Size, err)
		if err != nil {
			return models.ServiceRequest{}, &StageError{Stage: StageUpload, Err: err}
		}
		imageKey = &key
		log.Info("attachment uploaded", "key", key)
	}

	stage = StageRecord
	rec = models.ServiceRequest{
		Username:              id.Username,
		RequestDate:           ddb.FormatTime(s.now()),
		UserEmail:             form.Email,
		UserAddress:           form.Address,
		UserContactNumber:     optional(form.ContactNumber),
		ServiceDescription:    form.Description,
		ImageS3Key:            imageKey,
		RequestedServiceTitle: form.ServiceTitle,
		RequestedArtisanName:  form.ArtisanName,
	}
	log.Info("saving service request")
	if err := s.records.Insert(ctx, rec); err != nil {
		return models.ServiceRequest{}, &StageError{Stage: StageRecord, Err: err}
	}
	return rec, nil
}

// optional returns nil for blank values.
func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
