package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// ShareCode carries everything the owner needs to decide on an access
// request.
type ShareCode struct {
	OwnerEmail    string
	FileName      string
	Code          string
	RequesterAddr string
	ValidFor      time.Duration
}

var shareCodeTmpl = template.Must(template.New("share_code").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>File Access Request</title>
</head>
<body style="font-family: Arial, sans-serif; color: #333; background-color: #f5f5f5; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background: linear-gradient(90deg, #ff8a00, #e52e71); padding: 24px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 22px;">File Access Request</h1>
    </div>
    <div style="padding: 24px; text-align: center;">
      <p>Someone requested access to your shared file <strong>{{.FileName}}</strong>.</p>
      <p>Request origin: <strong>{{.RequesterAddr}}</strong></p>
      <p>Share this verification code with the requester if you approve:</p>
      <div style="font-size: 32px; letter-spacing: 8px; font-weight: bold; padding: 16px; background: #f0f0f0; border-radius: 8px;">{{.Code}}</div>
      <p style="color: #888; font-size: 13px;">The code expires in {{.ValidFor}}. If you did not expect this request, ignore this email and the code will lapse.</p>
    </div>
  </div>
</body>
</html>
`))

// NewShareCodeMessage renders the verification-code email for the file owner.
func NewShareCodeMessage(sc ShareCode) (*Message, error) {
	var html strings.Builder
	if err := shareCodeTmpl.Execute(&html, sc); err != nil {
		return nil, fmt.Errorf("render share code template: %w", err)
	}

	text := fmt.Sprintf(
		"Someone at %s requested access to your shared file %q.\n"+
			"Verification code: %s (expires in %s).\n"+
			"If you did not expect this request, ignore this message.",
		sc.RequesterAddr, sc.FileName, sc.Code, sc.ValidFor)

	return &Message{
		To:      sc.OwnerEmail,
		Subject: fmt.Sprintf("Access request for %q", sc.FileName),
		Text:    text,
		HTML:    html.String(),
	}, nil
}
