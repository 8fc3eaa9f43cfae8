package service

import (
	"context"
	"fmt"

	"multichat-be/internal/constant"
	"multichat-be/internal/dto"
	"multichat-be/internal/entity"
	"multichat-be/internal/repository/specification"
	"multichat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IPreferenceService interface {
	Get(ctx context.Context, userId uuid.UUID) (*dto.PreferenceResponse, error)
	Save(ctx context.Context, userId uuid.UUID, request *dto.SavePreferenceRequest) (*dto.PreferenceResponse, error)
}

type preferenceService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPreferenceService(uowFactory unitofwork.RepositoryFactory) IPreferenceService {
	return &preferenceService{
		uowFactory: uowFactory,
	}
}

// Get returns the caller's preferences, creating the default record on
// first access.
func (ps *preferenceService) Get(ctx context.Context, userId uuid.UUID) (*dto.PreferenceResponse, error) {
	uow := ps.uowFactory.NewUnitOfWork(ctx)

	preference, err := uow.PreferenceRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if preference == nil {
		preference = entity.DefaultPreferences(userId)
		if err := uow.PreferenceRepository().Save(ctx, preference); err != nil {
			return nil, err
		}
	}

	return preferenceToDTO(preference), nil
}

// Save merges the patch into the stored record; absent fields keep their
// current values.
func (ps *preferenceService) Save(ctx context.Context, userId uuid.UUID, request *dto.SavePreferenceRequest) (*dto.PreferenceResponse, error) {
	if len(request.Traits) > constant.MaxTraits {
		return nil, fmt.Errorf("at most %d traits are allowed", constant.MaxTraits)
	}

	uow := ps.uowFactory.NewUnitOfWork(ctx)

	preference, err := uow.PreferenceRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if preference == nil {
		preference = entity.DefaultPreferences(userId)
	}

	if request.Username != nil {
		preference.Username = *request.Username
	}
	if request.Occupation != nil {
		preference.Occupation = *request.Occupation
	}
	if request.Traits != nil {
		preference.Traits = request.Traits
	}
	if request.AboutText != nil {
		preference.AboutText = *request.AboutText
	}
	if request.HidePersonalInfo != nil {
		preference.HidePersonalInfo = *request.HidePersonalInfo
	}
	if request.DisableThematicBreaks != nil {
		preference.DisableThematicBreaks = *request.DisableThematicBreaks
	}
	if request.StatsForNerds != nil {
		preference.StatsForNerds = *request.StatsForNerds
	}
	if request.MainFont != nil {
		preference.MainFont = *request.MainFont
	}
	if request.CodeFont != nil {
		preference.CodeFont = *request.CodeFont
	}
	if request.BoringMode != nil {
		preference.BoringMode = *request.BoringMode
	}

	if err := uow.PreferenceRepository().Save(ctx, preference); err != nil {
		return nil, err
	}

	return preferenceToDTO(preference), nil
}

func preferenceToDTO(p *entity.UserPreference) *dto.PreferenceResponse {
	traits := p.Traits
	if traits == nil {
		traits = []string{}
	}
	return &dto.PreferenceResponse{
		Username:              p.Username,
		Occupation:            p.Occupation,
		Traits:                traits,
		AboutText:             p.AboutText,
		HidePersonalInfo:      p.HidePersonalInfo,
		DisableThematicBreaks: p.DisableThematicBreaks,
		StatsForNerds:         p.StatsForNerds,
		MainFont:              p.MainFont,
		CodeFont:              p.CodeFont,
		BoringMode:            p.BoringMode,
	}
}
