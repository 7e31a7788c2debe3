package tools

import (
	"context"
	"net/smtp"
	"reflect"
	"strings"
	"testing"

	"aide/config"
)

func TestParseEmailCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    emailCommand
	}{
		{
			name:    "full send command",
			command: "to:a@example.com,b@example.com; cc:c@example.com; subject:Weekly report; body:All good.; attach:report.txt,data.csv",
			want: emailCommand{
				To:          []string{"a@example.com", "b@example.com"},
				CC:          []string{"c@example.com"},
				Subject:     "Weekly report",
				Body:        "All good.",
				Attachments: []string{"report.txt", "data.csv"},
				Limit:       5,
			},
		},
		{
			name:    "quoted body keeps semicolons",
			command: "to:a@example.com; body:'First part; second part'",
			want: emailCommand{
				To:    []string{"a@example.com"},
				Body:  "First part; second part",
				Limit: 5,
			},
		},
		{
			name:    "case-insensitive keys",
			command: "TO:a@example.com; Subject:Hi",
			want: emailCommand{
				To:      []string{"a@example.com"},
				Subject: "Hi",
				Limit:   5,
			},
		},
		{
			name:    "read command",
			command: "read:true; query:is:unread; limit:3",
			want: emailCommand{
				Read:  true,
				Query: "is:unread",
				Limit: 3,
			},
		},
		{
			name:    "empty values ignored",
			command: "to:; subject:Hi",
			want: emailCommand{
				Subject: "Hi",
				Limit:   5,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseEmailCommand(tt.command)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseEmailCommand(%q) = %+v, want %+v", tt.command, got, tt.want)
			}
		})
	}
}

func TestEmailSendValidation(t *testing.T) {
	sender := NewEmailSender(config.SMTPConfig{}, "", nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{
			"read unsupported", "read:true; query:is:unread",
			"Error: Reading email is not supported. Only sending through the configured SMTP server is available.",
		},
		{
			"no recipients", "subject:Hi; body:there",
			"Error: No recipients specified in command_string. Use 'to:email@example.com'",
		},
		{
			"unconfigured", "to:a@example.com; subject:Hi",
			"Error: Email is not configured. Set [smtp] host and from in config.toml.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sender.Send(ctx, tt.command, "")
			if err != nil {
				t.Fatalf("Send(%q) error = %v", tt.command, err)
			}
			if got != tt.want {
				t.Errorf("Send(%q) = %q, want %q", tt.command, got, tt.want)
			}
		})
	}
}

func TestEmailSendSubmitsMessage(t *testing.T) {
	ws := newTestWorkspace(t)
	mustWriteFile(t, ws, "report.txt", "quarterly numbers")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	sender := NewEmailSender(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 2525,
		From: "bot@example.com",
		User: "bot@example.com",
	}, "hunter2", ws)
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	got, err := sender.Send(context.Background(),
		"to:a@example.com; cc:b@example.com; bcc:c@example.com; subject:Numbers; body:See attached.; attach:report.txt", "")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	want := "Email sent successfully via bot@example.com to 1 recipient(s), 1 CC recipient(s) with 1 attachment(s) from the workspace."
	if got != want {
		t.Errorf("Send() = %q, want %q", got, want)
	}
	if gotAddr != "smtp.example.com:2525" {
		t.Errorf("addr = %q, want smtp.example.com:2525", gotAddr)
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("from = %q", gotFrom)
	}
	wantTo := []string{"a@example.com", "b@example.com", "c@example.com"}
	if !reflect.DeepEqual(gotTo, wantTo) {
		t.Errorf("recipients = %v, want %v", gotTo, wantTo)
	}

	msg := string(gotMsg)
	for _, fragment := range []string{
		"From: bot@example.com\r\n",
		"To: a@example.com\r\n",
		"Cc: b@example.com\r\n",
		"Subject: Numbers\r\n",
		"Content-Type: multipart/mixed; boundary=",
		"Content-Type: text/plain; charset=utf-8",
		"See attached.",
		`Content-Disposition: attachment; filename="report.txt"`,
		"Content-Transfer-Encoding: base64",
	} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("message missing %q", fragment)
		}
	}
	if strings.Contains(msg, "Bcc:") {
		t.Error("message leaks Bcc header")
	}
	if strings.Contains(msg, "quarterly numbers") {
		t.Error("attachment content not base64 encoded")
	}
}

func TestEmailSendInvalidAttachment(t *testing.T) {
	ws := newTestWorkspace(t)
	sender := NewEmailSender(config.SMTPConfig{Host: "smtp.example.com", From: "bot@example.com"}, "", ws)
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail called despite invalid attachment")
		return nil
	}

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{
			"escaping path", "to:a@example.com; attach:../secret.txt",
			"Error: Attachment path '../secret.txt' is invalid or outside the allowed workspace.",
		},
		{
			"missing file", "to:a@example.com; attach:nope.txt",
			"Error: Attachment path 'nope.txt' does not point to a file in the workspace.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sender.Send(context.Background(), tt.command, "")
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Send() = %q, want %q", got, tt.want)
			}
		})
	}
}
