package smtp

import (
	"context"
	"io"
	"time"

	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nyah-check/privatemail/internal/adapters/memory"
	"github.com/nyah-check/privatemail/internal/core"
)

// processTimeout bounds the pipeline run for one submitted message.
const processTimeout = 30 * time.Second

// Server is an SMTP frontend implementation of the Trigger interface.
// Submitted messages are staged in the in-memory store and pushed
// through the forwarding pipeline before the DATA command is
// answered, so the SMTP reply reflects the forwarding outcome.
type Server struct {
	service      *core.ForwardService
	store        *memory.Fetcher
	logger       *zap.Logger
	listenAddr   string
	domain       string
	maxBytes     int64
	readTimeout  time.Duration
	writeTimeout time.Duration
	server       *gosmtp.Server
}

// NewServer creates a new SMTP trigger server
func NewServer(
	service *core.ForwardService,
	store *memory.Fetcher,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	maxBytes int64,
	readTimeout time.Duration,
	writeTimeout time.Duration,
) *Server {
	return &Server{
		service:      service,
		store:        store,
		logger:       logger,
		listenAddr:   listenAddr,
		domain:       domain,
		maxBytes:     maxBytes,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Start starts the SMTP server
func (s *Server) Start() error {
	s.server = gosmtp.NewServer(&backend{server: s})

	s.server.Addr = s.listenAddr
	s.server.Domain = s.domain
	s.server.ReadTimeout = s.readTimeout
	s.server.WriteTimeout = s.writeTimeout
	s.server.MaxMessageBytes = s.maxBytes
	s.server.MaxRecipients = 50
	s.server.AllowInsecureAuth = true

	s.logger.Info("SMTP trigger starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if err != gosmtp.ErrServerClosed {
				s.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// backend implements the go-smtp Backend interface
type backend struct {
	server *Server
}

// NewSession creates a new SMTP session
func (b *backend) NewSession(c *gosmtp.Conn) (gosmtp.Session, error) {
	return &session{server: b.server}, nil
}

// session implements the go-smtp Session interface
type session struct {
	server *Server
	sender string
}

// Reset resets the session state
func (s *session) Reset() {
	s.sender = ""
}

// Mail records the envelope sender
func (s *session) Mail(from string, _ *gosmtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt accepts any recipient; delivery goes to the configured
// destination regardless of the envelope
func (s *session) Rcpt(to string, _ *gosmtp.RcptOptions) error {
	return nil
}

// Data stages the submitted message and forwards it
func (s *session) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.server.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ref := core.InboundRef{Bucket: "smtp", Key: uuid.NewString()}
	s.server.store.Put(ref, raw)
	defer s.server.store.Delete(ref)

	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	outcome := s.server.service.Forward(ctx, ref)
	switch outcome.State {
	case core.StateDropped:
		s.server.logger.Info("Dropped submitted message",
			zap.String("envelope_sender", s.sender),
			zap.String("reason", outcome.Reason))
		return nil
	case core.StateFailed:
		if core.IsPermanent(outcome.Err) {
			return &gosmtp.SMTPError{
				Code:         554,
				EnhancedCode: gosmtp.EnhancedCode{5, 6, 0},
				Message:      "message rejected: " + outcome.Reason,
			}
		}
		return &gosmtp.SMTPError{
			Code:         451,
			EnhancedCode: gosmtp.EnhancedCode{4, 3, 0},
			Message:      "temporary failure, try again later",
		}
	}
	return nil
}

// Logout handles SMTP logout
func (s *session) Logout() error {
	return nil
}
