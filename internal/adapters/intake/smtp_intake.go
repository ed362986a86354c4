package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-smart-forward/internal/core"
	"go.uber.org/zap"
)

// SMTPIntake is an SMTP front-end for the forwarding pipeline. It accepts a
// message, runs content analysis and rule matching, annotates the message
// with the outcome, and relays it onward to postfix. Resolved send actions
// are emitted to the log as declarative descriptions for the downstream
// workflow engine; this adapter never executes them.
type SMTPIntake struct {
	service            *core.ForwardingService
	logger             *zap.Logger
	listenAddr         string
	server             *smtp.Server
	rules              []*core.ForwardingRule
	defaultDestination core.Destination
	statusHeader       string
	ruleHeader         string
	summaryHeader      string
	postfixAddr        string
	postfixPort        int
	postfixEnabled     bool
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(
	service *core.ForwardingService,
	logger *zap.Logger,
	listenAddr string,
	rules []*core.ForwardingRule,
	defaultDestination core.Destination,
	statusHeader string,
	ruleHeader string,
	summaryHeader string,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
) *SMTPIntake {
	return &SMTPIntake{
		service:            service,
		logger:             logger,
		listenAddr:         listenAddr,
		rules:              rules,
		defaultDestination: defaultDestination,
		statusHeader:       statusHeader,
		ruleHeader:         ruleHeader,
		summaryHeader:      summaryHeader,
		postfixAddr:        postfixAddr,
		postfixPort:        postfixPort,
		postfixEnabled:     postfixEnabled,
	}
}

// Start starts the SMTP intake service
func (f *SMTPIntake) Start() error {
	f.server = smtp.NewServer(&smtpBackend{intake: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP intake starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP intake service
func (f *SMTPIntake) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage runs the forwarding pipeline over one message
func (f *SMTPIntake) ProcessMessage(ctx context.Context, content string, templateContext map[string]string) *core.ForwardingResult {
	return f.service.ProcessAndForward(ctx, content, f.rules, f.defaultDestination, templateContext)
}

// relayToPostfix sends the annotated message onward using go-smtp.
func (f *SMTPIntake) relayToPostfix(sender string, recipients []string, messageData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(messageData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		intake:     b.intake,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the intake)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data receives the message, runs the pipeline, and relays the annotated
// message. Pipeline failures never reject the message: the result headers
// carry the failure and the mail flows on.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.intake.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.intake.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	subject := msg.Header.Get("Subject")
	content := fmt.Sprintf("Subject: %s\nFrom: %s\nContent: %s", subject, s.sender, textContent)

	templateContext := map[string]string{
		"email_subject": subject,
		"email_from":    s.sender,
		"email_body":    textContent,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := s.intake.ProcessMessage(ctx, content, templateContext)

	for _, action := range result.Actions {
		s.intake.logger.Info("Resolved send action",
			zap.String("platform", string(action.Platform)),
			zap.String("email", action.Email),
			zap.String("chat_id", action.ChatID),
			zap.String("target_user", action.TargetUserID),
			zap.String("subject", action.Subject))
	}

	var annotated bytes.Buffer
	fmt.Fprintf(&annotated, "%s: %t\r\n", s.intake.statusHeader, result.Success)
	if result.MatchedRule != nil {
		fmt.Fprintf(&annotated, "%s: %s\r\n", s.intake.ruleHeader, result.MatchedRule.Description)
	}
	fmt.Fprintf(&annotated, "%s: %s\r\n", s.intake.summaryHeader, sanitizeHeaderValue(result.Summary))

	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&annotated, "%s: %s\r\n", key, value)
		}
	}
	fmt.Fprintf(&annotated, "\r\n")

	// Preserve the original body byte-for-byte, MIME parts included
	bodyStart := bytes.Index(rawData, []byte("\r\n\r\n"))
	if bodyStart != -1 {
		annotated.Write(rawData[bodyStart+4:])
	} else if bodyStart = bytes.Index(rawData, []byte("\n\n")); bodyStart != -1 {
		annotated.Write(rawData[bodyStart+2:])
	} else {
		annotated.WriteString(textContent)
	}

	if s.intake.postfixEnabled {
		if err := s.intake.relayToPostfix(s.sender, s.recipients, annotated.Bytes()); err != nil {
			s.intake.logger.Error("Failed to relay message to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	}

	s.intake.logger.Info("Processed message",
		zap.String("from", s.sender),
		zap.Bool("forwarded", result.Success),
		zap.Int("actions", len(result.Actions)))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}

// sanitizeHeaderValue folds a summary onto one header-safe line.
func sanitizeHeaderValue(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	if len(value) > 200 {
		value = value[:200]
	}
	return strings.TrimSpace(value)
}
