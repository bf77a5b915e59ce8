package entity

const (
	AnalysisFormID   = "14"
	AnalysisFormName = "appanalyze"
)

// AnalysisRequest é o corpo enviado ao webhook testar-blog.
type AnalysisRequest struct {
	RecordID    string `json:"record_id"`
	URL         string `json:"url"`
	FormID      string `json:"formId"`
	FormName    string `json:"formName"`
	ClickID     string `json:"clickid"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Telefone    string `json:"telefone"`
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
	Faturamento string `json:"faturamento_com_blog"`
}
