package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

func SubjectForUniversal(data map[string]any) string {
	switch strings.ToLower(fmt.Sprintf("%v", data["Type"])) {
	case mailtpl.ActivateAccount:
		return "Activate your account"
	case mailtpl.ForgotPassword:
		return "Reset your password"
	case mailtpl.PasswordChanged:
		return "Your password was changed"
	default:
		return "Notification"
	}
}

// EnsureRecipientAndEmail fills the addressee fields the templates print.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	to := job.Recipient()
	if v, ok := job.Data["Email"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = to
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = to
	}
}

// MapTypedToUniversal rewrites jobs queued with a bare type name as template
// so they render through the universal template.
func MapTypedToUniversal(job *mailer.EmailJob) {
	switch strings.ToLower(job.Template) {
	case mailtpl.ActivateAccount, mailtpl.ForgotPassword, mailtpl.PasswordChanged:
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if v, ok := job.Data["Type"]; !ok || v == nil || fmt.Sprintf("%v", v) == "" {
			job.Data["Type"] = strings.ToLower(job.Template)
		}
		job.Template = mailtpl.Universal
	}
}
