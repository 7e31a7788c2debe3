package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aide/config"
)

// EmailSender sends mail through a configured SMTP server. The
// command-string argument carries 'key:value;' pairs: to, cc, bcc,
// subject, body, attach (comma-separated workspace paths), plus the
// read/query/limit keys of the reading syntax, which is not supported.
type EmailSender struct {
	cfg       config.SMTPConfig
	password  string
	workspace *Workspace

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender builds the email tool. password is the SMTP password
// from the credential store; attachments are validated against ws.
func NewEmailSender(cfg config.SMTPConfig, password string, ws *Workspace) *EmailSender {
	return &EmailSender{
		cfg:       cfg,
		password:  password,
		workspace: ws,
		sendMail:  smtp.SendMail,
	}
}

// Send parses the command string and submits the message.
func (e *EmailSender) Send(ctx context.Context, commandString, _ string) (string, error) {
	cmd := parseEmailCommand(commandString)

	if cmd.Read {
		return "Error: Reading email is not supported. Only sending through the configured SMTP server is available.", nil
	}
	if len(cmd.To) == 0 {
		return "Error: No recipients specified in command_string. Use 'to:email@example.com'", nil
	}
	if e == nil || e.cfg.Host == "" || e.cfg.From == "" {
		return "Error: Email is not configured. Set [smtp] host and from in config.toml.", nil
	}

	attachments, errText := e.loadAttachments(cmd.Attachments)
	if errText != "" {
		return errText, nil
	}

	msg := buildMessage(e.cfg.From, cmd, attachments)

	port := e.cfg.Port
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(e.cfg.Host, strconv.Itoa(port))

	var auth smtp.Auth
	if e.cfg.User != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.password, e.cfg.Host)
	}

	recipients := make([]string, 0, len(cmd.To)+len(cmd.CC)+len(cmd.BCC))
	recipients = append(recipients, cmd.To...)
	recipients = append(recipients, cmd.CC...)
	recipients = append(recipients, cmd.BCC...)

	if err := e.sendMail(addr, auth, e.cfg.From, recipients, msg); err != nil {
		return fmt.Sprintf("Error creating or sending email: %v", err), nil
	}

	result := fmt.Sprintf("Email sent successfully via %s to %d recipient(s)", e.cfg.From, len(cmd.To))
	if len(cmd.CC) > 0 {
		result += fmt.Sprintf(", %d CC recipient(s)", len(cmd.CC))
	}
	if len(attachments) > 0 {
		result += fmt.Sprintf(" with %d attachment(s) from the workspace", len(attachments))
	}
	return result + ".", nil
}

type attachment struct {
	name string
	data []byte
}

// loadAttachments validates every attachment path through the
// workspace sandbox and reads the files. The string return is a
// conversational error text, empty on success.
func (e *EmailSender) loadAttachments(paths []string) ([]attachment, string) {
	if len(paths) == 0 {
		return nil, ""
	}
	if e.workspace == nil {
		return nil, "Error: Cannot process attachments because the workspace directory is not available."
	}

	var attachments []attachment
	for _, rel := range paths {
		abs, err := e.workspace.resolve(rel)
		if err != nil {
			return nil, fmt.Sprintf("Error: Attachment path '%s' is invalid or outside the allowed workspace.", rel)
		}
		info, statErr := os.Stat(abs)
		if statErr != nil || info.IsDir() {
			return nil, fmt.Sprintf("Error: Attachment path '%s' does not point to a file in the workspace.", rel)
		}
		data, readErr := os.ReadFile(abs)
		if readErr != nil {
			return nil, fmt.Sprintf("Error attaching file %s: %v", filepath.Base(abs), readErr)
		}
		attachments = append(attachments, attachment{name: filepath.Base(abs), data: data})
	}
	return attachments, ""
}

// buildMessage assembles a multipart/mixed MIME message with a plain
// text body and base64-encoded attachments.
func buildMessage(from string, cmd emailCommand, attachments []attachment) []byte {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(cmd.To, ", "))
	if len(cmd.CC) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(cmd.CC, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", cmd.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	body, _ := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	io.WriteString(body, cmd.Body)

	for _, att := range attachments {
		part, _ := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.name)},
			"Content-Transfer-Encoding": {"base64"},
		})
		writeBase64(part, att.data)
	}
	mixed.Close()

	return buf.Bytes()
}

// writeBase64 encodes data in 76-column lines per RFC 2045.
func writeBase64(w io.Writer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		io.WriteString(w, encoded[:76])
		io.WriteString(w, "\r\n")
		encoded = encoded[76:]
	}
	io.WriteString(w, encoded)
}

type emailCommand struct {
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	Body        string
	Attachments []string
	Read        bool
	Query       string
	Limit       int
}

// parseEmailCommand splits the 'key:value;' command string. Keys are
// case-insensitive; list values are comma-separated; single quotes
// around a value are stripped and protect semicolons inside it.
func parseEmailCommand(command string) emailCommand {
	cmd := emailCommand{Limit: 5}

	for _, part := range splitCommand(command) {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.Trim(strings.TrimSpace(value), "'")
		if value == "" {
			continue
		}

		switch key {
		case "to":
			cmd.To = splitList(value)
		case "cc":
			cmd.CC = splitList(value)
		case "bcc":
			cmd.BCC = splitList(value)
		case "subject":
			cmd.Subject = value
		case "body":
			cmd.Body = value
		case "attach":
			cmd.Attachments = splitList(value)
		case "read":
			if strings.EqualFold(value, "true") {
				cmd.Read = true
			}
		case "query":
			cmd.Query = value
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				cmd.Limit = n
			}
		}
	}
	return cmd
}

// splitCommand splits on ';' while keeping semicolons inside
// single-quoted values intact.
func splitCommand(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ';' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
