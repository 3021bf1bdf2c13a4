package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client fala com a Cloud API do WhatsApp Business.
type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	httpClient  *http.Client
}

func NewClient(accessToken, phoneID, baseURL string) *Client {
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// SendText envia texto livre para o número (só dígitos, com DDI).
func (c *Client) SendText(ctx context.Context, phoneDigits, text string) error {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp: ACCESS_TOKEN ou PHONE_ID não configurados")
		return fmt.Errorf("whatsapp não configurado")
	}

	body, err := json.Marshal(sendTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               phoneDigits,
		Type:             "text",
		Text:             textBody{PreviewURL: true, Body: text},
	})
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ WhatsApp: Erro ao enviar mensagem: %v", err)
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("❌ WhatsApp: API retornou status %d: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("whatsapp api error: %d", resp.StatusCode)
	}

	var result SendMessageResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("whatsapp: erro ao parsear resposta: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}

	log.Printf("✅ WhatsApp: Mensagem enviada para %s", phoneDigits)
	return nil
}

// Open envia direto, sem fila. Usado quando não há RabbitMQ.
func (c *Client) Open(ctx context.Context, phoneDigits, text string) error {
	return c.SendText(ctx, phoneDigits, text)
}
