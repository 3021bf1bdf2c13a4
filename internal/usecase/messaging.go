package usecase

import (
	"context"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/xavierca1/imob-crm/internal/entity"
)

const (
	placeholderName     = "{nome}"
	placeholderProperty = "{imovel}"
	fallbackProperty    = "imóvel"
	escalationReason    = "automático: primeiro contato via WhatsApp"
)

var nonDigits = regexp.MustCompile(`\D`)

// ComposeMessage troca todas as ocorrências de {nome} e {imovel}.
func ComposeMessage(tpl entity.MessageTemplate, lead entity.Lead) string {
	property := fallbackProperty
	if lead.Property != nil && strings.TrimSpace(lead.Property.Title) != "" {
		property = lead.Property.Title
	}

	r := strings.NewReplacer(
		placeholderName, lead.FirstName(),
		placeholderProperty, property,
	)
	return r.Replace(tpl.Content)
}

func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// ClickToChatURL é o link wa.me com o texto já preenchido.
func ClickToChatURL(phoneDigits, text string) string {
	return "https://wa.me/" + phoneDigits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// SendTemplateResult descreve um envio. O envio externo não pode ser desfeito,
// então falhas de timeline e de status vêm separadas e não invalidam o resultado.
type SendTemplateResult struct {
	Message     string `json:"message"`
	Phone       string `json:"phone"`
	Link        string `json:"link"`
	Escalated   bool   `json:"escalated"`
	TimelineErr error  `json:"-"`
	StatusErr   error  `json:"-"`
}

func (r *SendTemplateResult) Warnings() []string {
	var out []string
	if r.TimelineErr != nil {
		out = append(out, "timeline: "+r.TimelineErr.Error())
	}
	if r.StatusErr != nil {
		out = append(out, "status: "+r.StatusErr.Error())
	}
	return out
}

type MessagingService struct {
	channel  MessagingChannel
	timeline *TimelineService
	metrics  PipelineMetrics
}

func NewMessagingService(channel MessagingChannel, timeline *TimelineService, metrics PipelineMetrics) *MessagingService {
	return &MessagingService{channel: channel, timeline: timeline, metrics: metricsOrNoop(metrics)}
}

// SendTemplate compõe e envia a mensagem, registra na timeline e, se o lead ainda
// estiver em NEW, leva-o para QUALIFYING.
func (m *MessagingService) SendTemplate(ctx context.Context, store *LeadStore, tpl entity.MessageTemplate, leadID string) (*SendTemplateResult, error) {
	if !tpl.Active {
		return nil, &entity.ValidationError{Field: "template", Message: "template inativo"}
	}

	lead, ok := store.Lead(leadID)
	if !ok {
		return nil, &entity.NotFoundError{Resource: "lead", ID: leadID}
	}

	phone := NormalizePhone(lead.Phone)
	if phone == "" {
		return nil, &entity.ValidationError{Field: "phone", Message: "lead sem telefone"}
	}

	text := ComposeMessage(tpl, lead)
	if err := m.channel.Open(ctx, phone, text); err != nil {
		log.Printf("❌ WhatsApp: falha ao enviar template '%s' para o lead %s: %v", tpl.Title, leadID, err)
		return nil, entity.NewRemoteError("enviar whatsapp", err)
	}
	m.metrics.MessageSent(tpl.Title)

	result := &SendTemplateResult{
		Message: text,
		Phone:   phone,
		Link:    ClickToChatURL(phone, text),
	}

	if _, err := m.timeline.AddEvent(ctx, leadID, entity.EventWhatsApp, `Template "`+tpl.Title+`" enviado via WhatsApp`); err != nil {
		result.TimelineErr = err
	}

	current, ok := store.Lead(leadID)
	if ok && current.Status == entity.StatusNew {
		err := store.ApplyIntent(ctx, entity.TransitionIntent{
			LeadID: leadID,
			Target: entity.StatusQualifying,
			Reason: escalationReason,
		})
		if err != nil {
			log.Printf("⚠️ Mensagem enviada, mas o lead %s continua em NEW: %v", leadID, err)
			result.StatusErr = err
		} else {
			result.Escalated = true
		}
	}

	return result, nil
}
