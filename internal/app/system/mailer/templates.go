// internal/app/system/mailer/templates.go
package mailer

import (
	"fmt"
	"strings"
)

// JoinRequestEmail tells workspace admins that someone asked to join.
func JoinRequestEmail(to []string, workspaceName, requesterName, requesterEmail, membersURL string) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) has asked to join the workspace %q.\n\n", requesterName, requesterEmail, workspaceName)
	b.WriteString("Review pending members here:\n")
	b.WriteString(membersURL + "\n")
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("[%s] New join request", workspaceName),
		TextBody: b.String(),
	}
}

// ActivationEmail carries the sign-up activation link.
func ActivationEmail(to, link, expiresIn string) Email {
	var b strings.Builder
	b.WriteString("Thank you for signing up.\n\n")
	b.WriteString("Activate your account with this link:\n")
	b.WriteString(link + "\n\n")
	fmt.Fprintf(&b, "The link expires in %s.\n", expiresIn)
	return Email{To: []string{to}, Subject: "Activate your account", TextBody: b.String()}
}

// InviteEmail carries a workspace invitation link.
func InviteEmail(to, workspaceName, inviterName, link, expiresIn string) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has invited you to the workspace %q.\n\n", inviterName, workspaceName)
	b.WriteString("Set up your account with this link:\n")
	b.WriteString(link + "\n\n")
	fmt.Fprintf(&b, "The link expires in %s.\n", expiresIn)
	return Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Invitation to %s", workspaceName),
		TextBody: b.String(),
	}
}
