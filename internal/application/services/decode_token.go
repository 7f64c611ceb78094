package services

import (
	"github.com/reglet-dev/scatslx/internal/application/dto"
	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/services"
)

// DecodeToken decodes a single plan token outside of any LX file.
func DecodeToken(req dto.DecodeRequest) (*dto.DecodeResponse, error) {
	if err := req.Kind.Validate(); err != nil {
		return nil, apperrors.NewValidationError("kind", err.Error())
	}

	decoded, err := services.NewPlanDecoder(req.Strict).Decode(req.Kind, req.Token)
	if err != nil {
		return nil, err
	}

	resp := &dto.DecodeResponse{
		Kind:   req.Kind,
		Token:  req.Token,
		Offset: decoded.Offset,
		Tuple:  decoded.Offset.Tuple(),
	}
	// Fallback and invalid-linkage offsets have no canonical form.
	if canonical, err := services.EncodePlan(req.Kind, decoded.Offset); err == nil {
		resp.Canonical = canonical
	}
	for _, issue := range decoded.Issues {
		resp.Issues = append(resp.Issues, entities.ErrorEntry{
			EntityID: req.Token,
			Kind:     issue.Kind,
			Message:  issue.Message,
		})
	}
	return resp, nil
}
