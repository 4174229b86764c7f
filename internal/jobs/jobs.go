// Package jobs is the durable queue boundary between the API and the worker.
// Producers append a job and return; the worker consumes with at-least-once
// semantics, so handlers must tolerate redelivery (a duplicate welcome email
// is acceptable).
package jobs

const (
	Topic           = "emails"
	DeadLetterTopic = "emails_dlq"

	TypeSendRegistrationEmail = "send_registration_email"
)

type Job struct {
	ID             string `json:"id"`
	Type           string `json:"job_type"`
	RecipientEmail string `json:"recipient_email"`
	Username       string `json:"username"`
}

func NewRegistrationEmail(email, username string) Job {
	return Job{
		Type:           TypeSendRegistrationEmail,
		RecipientEmail: email,
		Username:       username,
	}
}
