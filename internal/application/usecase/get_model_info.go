package usecase

import (
	"context"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/service"
)

// GetModelInfo is the use case for describing the loaded model.
type GetModelInfo struct {
	engine *service.Engine
}

// NewGetModelInfo creates a new GetModelInfo use case.
func NewGetModelInfo(engine *service.Engine) *GetModelInfo {
	return &GetModelInfo{engine: engine}
}

// Execute returns the model metadata.
func (uc *GetModelInfo) Execute(_ context.Context) (dto.ModelInfoResponse, error) {
	info, err := uc.engine.ModelInfo()
	if err != nil {
		return dto.ModelInfoResponse{}, err
	}
	return dto.FromModelInfo(info, uc.engine.ExplanationMethod()), nil
}
