package usecase

import (
	"encoding/json"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

// StartDiagnosticInput é o formulário do modal "Complete seus dados para análise".
type StartDiagnosticInput struct {
	URL         string `json:"url"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Telefone    string `json:"telefone"`
	Faturamento string `json:"faturamento_com_blog"`
	Perfil      string `json:"perfil"`
	UTMSource   string `json:"utm_source"`
	UTMCampaign string `json:"utm_campaign"`
	UTMMedium   string `json:"utm_medium"`
	UTMContent  string `json:"utm_content"`
	UTMTerm     string `json:"utm_term"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	Pais        string `json:"pais"`
	Dispositivo string `json:"dispositivo"`
	URLPagina   string `json:"url_pagina"`
	AppBlogWP   string `json:"app_blogwp"`
	AppPlano    string `json:"app_plano"`
	ClickID     string `json:"clickid"`
}

type StartDiagnosticOutput struct {
	RecordID string `json:"record_id"`
	Status   string `json:"status"`
}

// ResultWebhookInput chega do worker externo; results pode ser string ou qualquer JSON.
// Campos de contato ausentes ficam nil e não são sobrescritos.
type ResultWebhookInput struct {
	RecordID    string          `json:"record_id"`
	URL         *string         `json:"url"`
	Nome        *string         `json:"nome"`
	Email       *string         `json:"email"`
	Telefone    *string         `json:"telefone"`
	Faturamento *string         `json:"faturamento"`
	Results     json.RawMessage `json:"results"`
}

type ResultWebhookOutput struct {
	Message    string                   `json:"message"`
	Record     *entity.DiagnosticRecord `json:"record"`
	UpdateData entity.DiagnosticUpdate  `json:"update_data"`
}
