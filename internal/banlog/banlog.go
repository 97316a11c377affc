// Package banlog keeps an audit trail of rejected logins by banned
// accounts and mails a daily summary to the operators.
package banlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	alertFrom        = os.Getenv("ALERT_FROM")  // sender email
	alertTo          = os.Getenv("ALERT_TO")    // receiver email
	smtpServer       = os.Getenv("SMTP_SERVER") // smtp.example.com
	smtpPort         = os.Getenv("SMTP_PORT")   // e.g., 587
	smtpUser         = os.Getenv("SMTP_USER")
	smtpPassword     = os.Getenv("SMTP_PASS")
	smtpAuthDisabled = os.Getenv("SMTP_AUTH_DISABLED")

	rdb *redis.Client
	ctx = context.Background()
)

// SetRedis wires the redis client the audit list lives on. A nil client
// disables recording.
func SetRedis(client *redis.Client) {
	rdb = client
}

// Entry is one rejected login of a banned account.
type Entry struct {
	Subject string    `json:"subject"`
	Email   string    `json:"email,omitempty"`
	Time    time.Time `json:"time"`
}

const dailyLogKey = "banlog:daily"

// Record appends a rejected login to the daily audit list.
func Record(subject, email string) {
	if rdb == nil {
		return
	}
	entry := Entry{Subject: subject, Email: email, Time: time.Now()}
	data, _ := json.Marshal(entry)
	if err := rdb.RPush(ctx, dailyLogKey, data).Err(); err != nil {
		log.Printf("Failed to record banned login: %v", err)
	}
}

// StartDailySummary mails the audit list once a day, near midnight.
func StartDailySummary(interval time.Duration) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
		if now.After(next) {
			next = next.Add(interval)
		}
		time.Sleep(time.Until(next))
		SendDailySummary()
	}
}

// SendDailySummary drains the audit list and mails it.
func SendDailySummary() {
	if rdb == nil {
		return
	}
	items, err := rdb.LRange(ctx, dailyLogKey, 0, -1).Result()
	if err != nil || len(items) == 0 {
		return
	}
	_ = rdb.Del(ctx, dailyLogKey).Err() // clear after reading

	var entries []Entry
	bySubject := make(map[string]int)
	for _, item := range items {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err == nil {
			entries = append(entries, entry)
			bySubject[entry.Subject]++
		}
	}

	var sb strings.Builder
	sb.WriteString("<h2>Banned login attempts</h2>")
	sb.WriteString(fmt.Sprintf("<p>Total: <strong>%d</strong></p><ul>", len(entries)))
	for subject, count := range bySubject {
		sb.WriteString(fmt.Sprintf("<li>%s: %d</li>", subject, count))
	}
	sb.WriteString("</ul><h3>Full log</h3><ul>")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("<li><b>%s</b> (%s) at %s</li>",
			entry.Subject, entry.Email, entry.Time.Format(time.RFC822)))
	}
	sb.WriteString("</ul>")

	msg := strings.Join([]string{
		"From: " + alertFrom,
		"To: " + alertTo,
		"Subject: Daily banned-login report",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		sb.String(),
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", smtpServer, smtpPort)
	auth := smtp.PlainAuth("", smtpUser, smtpPassword, smtpServer)
	if smtpAuthDisabled != "" {
		auth = nil
	}

	go func() {
		if err := smtp.SendMail(addr, auth, alertFrom, []string{alertTo}, []byte(msg)); err != nil {
			log.Printf("Failed to send banned-login summary: %v", err)
		}
	}()
}
