package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/imob-crm/internal/entity"
)

var leadAlertTemplate = template.Must(template.New("lead_alert").Parse(`<p>Chegou um lead novo pelo site.</p>
<ul>
<li><b>Nome:</b> {{.Name}}</li>
{{if .Email}}<li><b>E-mail:</b> {{.Email}}</li>{{end}}
{{if .Phone}}<li><b>Telefone:</b> {{.Phone}}</li>{{end}}
{{if .PropertyTitle}}<li><b>Imóvel:</b> {{.PropertyTitle}}</li>{{end}}
</ul>
<p>Lead {{.LeadID}}</p>`))

func NewEmailSender(host string, port int, user, password, from, alertTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		AlertTo:  alertTo,
	}
}

// NotifyNewLead avisa a equipe comercial por e-mail sobre um lead do site.
func (s *EmailSender) NotifyNewLead(lead entity.Lead, propertyTitle string) error {
	subject, body, err := renderLeadAlert(lead, propertyTitle)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.AlertTo)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func renderLeadAlert(lead entity.Lead, propertyTitle string) (subject, body string, err error) {
	data := LeadAlertData{
		Name:          lead.Name,
		Email:         lead.Email,
		Phone:         lead.Phone,
		PropertyTitle: propertyTitle,
		LeadID:        lead.ID,
	}

	var buf bytes.Buffer
	if err := leadAlertTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("erro ao processar template: %w", err)
	}

	subject = fmt.Sprintf("Novo lead: %s", lead.Name)
	if propertyTitle != "" {
		subject += " - " + propertyTitle
	}
	return subject, buf.String(), nil
}
