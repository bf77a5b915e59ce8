package mautic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client repassa submissões de formulário para o endpoint /form/submit do Mautic.
type Client struct {
	formURL    string
	httpClient *http.Client
}

func NewClient(formURL string, timeout time.Duration) *Client {
	return &Client{
		formURL:    formURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward envia body sem alterações, preservando o Content-Type. Não há retentativa.
func (c *Client) Forward(ctx context.Context, contentType string, body []byte) (*ForwardResult, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("erro ao montar requisição para o Mautic: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao chamar o Mautic: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta do Mautic: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return &ForwardResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}
