package email

import (
	"fmt"
	"html/template"
	"strings"
)

const otpTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto;">
  <h2>{{.Title}}</h2>
  <p>Hello{{if .Name}} {{.Name}}{{end}},</p>
  <p>{{.Intro}}</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>The code expires in {{.TTLMinutes}} minutes. If you did not request it, ignore this message.</p>
</div>`

const welcomeTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto;">
  <h2>Welcome to TaskHub</h2>
  <p>Hello {{.Name}},</p>
  <p>Your account is ready. You can sign in and start working on your projects.</p>
</div>`

const resetSuccessTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 480px; margin: 0 auto;">
  <h2>Password changed</h2>
  <p>Hello {{.Name}},</p>
  <p>The password for your account was just changed. All active sessions have been signed out.</p>
  <p>If this was not you, reset your password immediately.</p>
</div>`

var (
	otpTpl          = template.Must(template.New("otp").Parse(otpTemplate))
	welcomeTpl      = template.Must(template.New("welcome").Parse(welcomeTemplate))
	resetSuccessTpl = template.Must(template.New("reset_success").Parse(resetSuccessTemplate))
)

type otpData struct {
	Title      string
	Name       string
	Intro      string
	Code       string
	TTLMinutes int
}

// RenderSignupOTP builds the verification-code mail body.
func RenderSignupOTP(name, code string, ttlMinutes int) (string, error) {
	return render(otpTpl, otpData{
		Title:      "Confirm your email",
		Name:       name,
		Intro:      "Use this code to finish creating your account:",
		Code:       code,
		TTLMinutes: ttlMinutes,
	})
}

// RenderResetOTP builds the password-reset-code mail body.
func RenderResetOTP(name, code string, ttlMinutes int) (string, error) {
	return render(otpTpl, otpData{
		Title:      "Reset your password",
		Name:       name,
		Intro:      "Use this code to reset your password:",
		Code:       code,
		TTLMinutes: ttlMinutes,
	})
}

// RenderWelcome builds the post-signup greeting body.
func RenderWelcome(name string) (string, error) {
	return render(welcomeTpl, struct{ Name string }{Name: name})
}

// RenderResetSuccess builds the password-changed notification body.
func RenderResetSuccess(name string) (string, error) {
	return render(resetSuccessTpl, struct{ Name string }{Name: name})
}

func render(tpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
