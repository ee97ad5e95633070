// Package email provides named, lazily constructed mailer instances and a
// fluent builder for composing and sending a single message.
//
// Instances are configured per name under the "email" configuration group.
// Each entry selects a driver and carries driver options:
//
//	email:
//	  default:
//	    driver: smtp
//	    options:
//	      hostname: smtp.example.com
//	      port: 587
//	      encryption: tls
//	      username: ${SMTP_USER}
//	      password: ${SMTP_PASSWORD}
//
// # Basic Usage
//
//	registry := email.NewRegistry(email.FileSource{Path: "config.yaml"})
//
//	m, err := registry.Instance("") // "default"
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = m.From("noreply@example.com", "Example").
//		To("user@example.com", "User").
//		Subject("Welcome").
//		Message("<h1>Welcome!</h1>", true).
//		Send(context.Background())
//
// # Drivers
//
//   - smtp: SMTP submission with optional implicit TLS or STARTTLS and PLAIN auth
//   - ses: Amazon SES raw email
//   - sendgrid, mailgun, postmark: provider HTTP APIs
//   - anything else: the local sendmail binary
//
// Recipients accumulate across sends until Reset is called. Sends are
// synchronous and never retried. Each Send is traced with OpenTelemetry.
package email
