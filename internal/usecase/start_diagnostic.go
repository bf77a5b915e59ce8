package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xavierca1/automatik-diagnostic/internal/entity"
)

const StatusWaiting = "WAITING"

type StartDiagnosticUseCase struct {
	Repo       entity.DiagnosticRepositoryInterface
	Dispatcher AnalysisDispatcher
	Log        zerolog.Logger
}

func NewStartDiagnosticUseCase(
	repo entity.DiagnosticRepositoryInterface,
	dispatcher AnalysisDispatcher,
	log zerolog.Logger,
) *StartDiagnosticUseCase {
	return &StartDiagnosticUseCase{
		Repo:       repo,
		Dispatcher: dispatcher,
		Log:        log,
	}
}

func (uc *StartDiagnosticUseCase) Execute(ctx context.Context, input StartDiagnosticInput) (*StartDiagnosticOutput, error) {
	input.URL = strings.TrimSpace(input.URL)
	input.Telefone = FormatPhone(input.Telefone)

	if errs := ValidateStartDiagnosticInput(input); len(errs) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: validationMessage(errs),
			Fields:  errs,
		}
	}

	record := &entity.DiagnosticRecord{
		URL:         input.URL,
		Nome:        input.Nome,
		Email:       input.Email,
		Telefone:    input.Telefone,
		Faturamento: input.Faturamento,
	}

	if err := uc.Repo.Create(ctx, record); err != nil {
		if errors.Is(err, entity.ErrMissingURL) {
			return nil, &DomainError{
				Code:    CodeValidation,
				Message: err.Error(),
				Fields:  []ValidationError{{"url", "is required"}},
			}
		}
		return nil, &TechnicalError{
			Code:    CodeDatabase,
			Message: "failed to create diagnostic record",
			Err:     err,
		}
	}

	uc.Log.Info().Str("record_id", record.ID).Str("url", record.URL).Msg("📝 Registro de diagnóstico criado")

	req := entity.AnalysisRequest{
		RecordID:    record.ID,
		URL:         record.URL,
		FormID:      entity.AnalysisFormID,
		FormName:    entity.AnalysisFormName,
		ClickID:     input.ClickID,
		Nome:        input.Nome,
		Email:       input.Email,
		Telefone:    input.Telefone,
		Perfil:      input.Perfil,
		UTMSource:   input.UTMSource,
		UTMCampaign: input.UTMCampaign,
		UTMMedium:   input.UTMMedium,
		UTMContent:  input.UTMContent,
		UTMTerm:     input.UTMTerm,
		Cidade:      input.Cidade,
		Estado:      input.Estado,
		Pais:        input.Pais,
		Dispositivo: input.Dispositivo,
		URLPagina:   input.URLPagina,
		AppBlogWP:   input.AppBlogWP,
		AppPlano:    input.AppPlano,
		Faturamento: input.Faturamento,
	}

	if err := uc.Dispatcher.Dispatch(ctx, req); err != nil {
		return nil, &TechnicalError{
			Code:    CodeUpstream,
			Message: "Erro ao enviar o formulário.",
			Err:     err,
		}
	}

	uc.Log.Info().Str("record_id", record.ID).Msg("🚀 Pedido de análise enviado")

	return &StartDiagnosticOutput{
		RecordID: record.ID,
		Status:   StatusWaiting,
	}, nil
}
