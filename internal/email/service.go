package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bukohub/gym-fusion-training-sub001/internal/logger"
	"github.com/bukohub/gym-fusion-training-sub001/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
	pollTimeout    = 2 * time.Second
)

const (
	TypeBookingConfirmation = "booking_confirmation"
	TypeBookingCancellation = "booking_cancellation"
	TypeMembershipRenewal   = "membership_renewal"
	TypeExpiryReminder      = "expiry_reminder"
	TypeGeneric             = "generic"
)

type EmailJob struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis      *redis.Client
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
	retryDelay time.Duration
	// pause after a failed queue read
	errorBackoff time.Duration
	sendMail     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: redisAddr}),
		fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass)
}

func NewWithClient(rdb *redis.Client, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string) *Service {
	return &Service{
		redis:        rdb,
		from:         fromEmail,
		fromName:     fromName,
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPass:     smtpPass,
		retryDelay:   5 * time.Second,
		errorBackoff: 5 * time.Second,
		sendMail:     smtp.SendMail,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, TypeGeneric, to, name, subject, body)
}

func (s *Service) enqueue(ctx context.Context, emailType, to, name, subject, body string) error {
	job := EmailJob{
		Type:    emailType,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Info("email queued", "type", emailType, "to", to)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, pollTimeout, queueKey).Result()
	if errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Errorf("Failed to read email queue: %v", err)
		select {
		case <-ctx.Done():
		case <-time.After(s.errorBackoff):
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	s.deliver(ctx, job)
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
}

func (s *Service) deliver(ctx context.Context, job EmailJob) {
	job.Tries++
	logger.Debugf("Sending email to %s (attempt %d)", job.To, job.Tries)

	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)
		metrics.RecordEmail(job.Type, "failed")

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Info("email sent", "type", job.Type, "to", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return s.sendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

const timeLayout = "Jan 2, 2006 at 3:04 PM"

func (s *Service) SendBookingConfirmation(ctx context.Context, email, name, className string, start time.Time) error {
	subject := "Class Booked - " + className
	body := fmt.Sprintf(`Hi %s,

Your spot is reserved!

Class: %s
Time: %s

See you at the gym!

- %s`, name, className, start.Format(timeLayout), s.fromName)

	return s.enqueue(ctx, TypeBookingConfirmation, email, name, subject, body)
}

func (s *Service) SendBookingCancellation(ctx context.Context, email, name, className string, start time.Time) error {
	subject := "Booking Cancelled - " + className
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Class: %s
Time: %s

- %s`, name, className, start.Format(timeLayout), s.fromName)

	return s.enqueue(ctx, TypeBookingCancellation, email, name, subject, body)
}

func (s *Service) SendMembershipRenewal(ctx context.Context, email, name, planName string, endDate time.Time) error {
	subject := "Membership Renewed"
	body := fmt.Sprintf(`Hi %s,

Your %s membership has been renewed and is valid until %s.

- %s`, name, planName, endDate.Format("Jan 2, 2006"), s.fromName)

	return s.enqueue(ctx, TypeMembershipRenewal, email, name, subject, body)
}

func (s *Service) SendExpiryReminder(ctx context.Context, email, name string, endDate time.Time) error {
	subject := "Your membership expires soon"
	body := fmt.Sprintf(`Hi %s,

Your membership expires on %s. Visit the front desk to renew it.

- %s`, name, endDate.Format("Jan 2, 2006"), s.fromName)

	return s.enqueue(ctx, TypeExpiryReminder, email, name, subject, body)
}
