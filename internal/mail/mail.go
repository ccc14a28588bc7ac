// Package mail delivers the rendered report over SMTP.
package mail

import (
	"crypto/tls"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const defaultSMTPPort = 25

// Message is one report e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Dispatcher sends messages through an SMTP relay.
type Dispatcher struct {
	host string
	port int
	send func(*gomail.Message) error
}

// NewDispatcher creates a dispatcher for smtpHost, given as "host" or
// "host:port". STARTTLS is used when the server offers it.
func NewDispatcher(smtpHost string) (*Dispatcher, error) {
	host, port, err := SplitHostPort(smtpHost)
	if err != nil {
		return nil, err
	}
	d := gomail.Dialer{
		Host:      host,
		Port:      port,
		TLSConfig: &tls.Config{ServerName: host},
	}
	return &Dispatcher{
		host: host,
		port: port,
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}, nil
}

// SplitHostPort parses the smtp_host setting, defaulting to port 25.
func SplitHostPort(smtpHost string) (string, int, error) {
	smtpHost = strings.TrimSpace(smtpHost)
	if smtpHost == "" {
		return "", 0, errors.New("empty SMTP host")
	}
	if !strings.Contains(smtpHost, ":") {
		return smtpHost, defaultSMTPPort, nil
	}
	host, p, err := net.SplitHostPort(smtpHost)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid SMTP host %q", smtpHost)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid SMTP port %q", p)
	}
	return host, port, nil
}

// Build converts msg into a gomail message with an HTML body.
func Build(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m
}

// Send delivers msg. Errors are returned to the caller, which treats them as fatal.
func (d *Dispatcher) Send(msg Message) error {
	if msg.From == "" {
		return errors.New("missing sender address")
	}
	if len(msg.To) == 0 {
		return errors.New("missing recipient address")
	}
	log.Debugf("Sending report to %s through %s:%d", strings.Join(msg.To, ","), d.host, d.port)
	if err := d.send(Build(msg)); err != nil {
		return errors.Wrapf(err, "failed to send mail through %s:%d", d.host, d.port)
	}
	log.Infof("Report sent to %s", strings.Join(msg.To, ", "))
	return nil
}

// Recipients splits a comma separated address list.
func Recipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
