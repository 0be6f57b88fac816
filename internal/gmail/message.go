package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/teemow/schedulr/internal/scheduling"
)

const inviteFilename = "invite.ics"

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047.
// ASCII strings are returned unchanged.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// buildMessage renders msg as an RFC 2822 message. A message with an invite
// becomes multipart/mixed with the invite as text/calendar attachment.
func buildMessage(from string, msg scheduling.Message) ([]byte, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(from, "\r\n") {
		return nil, fmt.Errorf("addresses must not contain line breaks")
	}
	if msg.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}

	var b bytes.Buffer
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", encodeRFC2047(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(msg.Invite) == 0 {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Body)
		return b.Bytes(), nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	invite, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/calendar; charset="UTF-8"; method=REQUEST`},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", inviteFilename)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := invite.Write(wrapBase64(msg.Invite)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())
	b.Write(body.Bytes())
	return b.Bytes(), nil
}

// wrapBase64 encodes data as base64 in lines of 76 characters.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)
	var b bytes.Buffer
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	return b.Bytes()
}
