package library

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// EmailSender delivers a message to an address. Sends are fire-and-forget:
// there is no delivery confirmation and no failure signal.
type EmailSender interface {
	SendEmail(address, message string)
}

// ConsoleEmailService prints emails instead of sending them.
type ConsoleEmailService struct {
	out io.Writer
}

// NewConsoleEmailService prints to w, or stdout when w is nil.
func NewConsoleEmailService(w io.Writer) *ConsoleEmailService {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleEmailService{out: w}
}

func (s *ConsoleEmailService) SendEmail(address, message string) {
	fmt.Fprintf(s.out, "Sending email to %s: %s\n", address, message)
}

// LogEmailService records each email as a structured log entry.
type LogEmailService struct {
	log *zap.Logger
}

func NewLogEmailService(log *zap.Logger) *LogEmailService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogEmailService{log: log.Named("email")}
}

func (s *LogEmailService) SendEmail(address, message string) {
	s.log.Info("email sent", zap.String("to", address), zap.String("message", message))
}

// MultiEmailService hands every email to each sender in order.
type MultiEmailService []EmailSender

func (m MultiEmailService) SendEmail(address, message string) {
	for _, s := range m {
		s.SendEmail(address, message)
	}
}
