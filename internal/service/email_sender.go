package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	"github.com/go-mail/mail/v2"
	"github.com/sirupsen/logrus"

	"github.com/mudon/freelance-management-system-sub000/internal/model"
)

type EmailSender struct {
	dialer  *mail.Dialer
	from    string
	logger  *logrus.Logger
	enabled bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	enabled := os.Getenv("EMAIL_SENDER_ENABLED") == "true"
	if !enabled {
		return &EmailSender{logger: logger}
	}

	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	isInsecureSkipVerify := os.Getenv("INSECURE_SKIP_VERIFY") == "true"
	// Преобразуем smtpPort в int
	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.WithError(err).Error("Ошибка преобразования SMTP_PORT, отправка сводок отключена")
		return &EmailSender{logger: logger}
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: isInsecureSkipVerify,
	}
	return &EmailSender{
		dialer:  d,
		from:    smtpUser,
		logger:  logger,
		enabled: true,
	}
}

// Enabled сообщает, настроена ли отправка писем
func (es *EmailSender) Enabled() bool {
	return es != nil && es.enabled
}

// SendDashboardDigest отправляет сводку показателей по снимку дашборда
func (es *EmailSender) SendDashboardDigest(email string, snapshot *model.DashboardSnapshot) error {
	if es == nil {
		return nil
	}
	if !es.enabled {
		es.logger.Debug("Отправка уведомлений отключена")
		return nil
	}
	if email == "" {
		es.logger.Warn("Получатель сводки не задан")
		return nil
	}

	subject := fmt.Sprintf("Сводка дашборда за %s", snapshot.CreatedAt.Format("02.01.2006"))
	return es.sendEmail(email, subject, digestBody(snapshot))
}

func digestBody(snapshot *model.DashboardSnapshot) string {
	stats := snapshot.Stats
	return fmt.Sprintf(`
		<h1>Сводка дашборда</h1>
		<p>Клиенты: <strong>%d</strong></p>
		<p>Проекты: <strong>%d</strong> (активных: %d)</p>
		<p>Счета: <strong>%d</strong> (просроченных: %d)</p>
		<p>Предложения: <strong>%d</strong> (ожидают ответа: %d)</p>
		<p>Выручка: <strong>%s</strong></p>
		<p>К оплате: <strong>%s</strong></p>
		<p>Конверсия предложений: <strong>%d%%</strong></p>
		<p>Дата: <strong>%s</strong></p>
		<small>Это автоматическое уведомление, пожалуйста, не отвечайте на него</small>
	`,
		stats.TotalClients,
		stats.TotalProjects, stats.ActiveProjects,
		stats.TotalInvoices, stats.OverdueInvoices,
		stats.TotalQuotes, stats.PendingQuotes,
		stats.TotalRevenue.StringFixed(2),
		stats.TotalBalanceDue.StringFixed(2),
		stats.ConversionRate,
		snapshot.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func (es *EmailSender) sendEmail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("Ошибка отправки email")
		return fmt.Errorf("не удалось отправить email: %w", err)
	}

	es.logger.Infof("Email успешно отправлен на %s", to)
	return nil
}
