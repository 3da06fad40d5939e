package handler

import (
	"github.com/tmvalente/drivelog/internal/domain"
	"github.com/tmvalente/drivelog/internal/service"
)

// ActivityTypeDTO is the JSON representation of an activity type.
type ActivityTypeDTO struct {
	Codigo int    `json:"codigo"`
	Nome   string `json:"nome"`
}

func toActivityTypeDTOs(types []domain.ActivityType) []ActivityTypeDTO {
	dtos := make([]ActivityTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = ActivityTypeDTO{Codigo: t.Code, Nome: t.Name}
	}
	return dtos
}

// ActivityDTO is the JSON representation of a listed activity. Field names
// are part of the wire contract consumed by existing clients.
type ActivityDTO struct {
	ID           int64   `json:"id"`
	DataHora     string  `json:"data_hora"`
	Localizacao  string  `json:"localizacao"`
	NomeLocal    string  `json:"nome_local"`
	TipoCodigo   int     `json:"tipo_codigo"`
	TipoTexto    string  `json:"tipo_texto"`
	Kilometragem int64   `json:"kilometragem"`
	FotoURL      *string `json:"foto_url"`
	Pais         string  `json:"pais"`
}

func toActivityDTO(v service.ActivityView) ActivityDTO {
	dto := ActivityDTO{
		ID:           v.ID,
		DataHora:     v.RecordedAt,
		Localizacao:  v.Location,
		NomeLocal:    v.PlaceName,
		TipoCodigo:   v.TypeCode,
		TipoTexto:    v.TypeName,
		Kilometragem: v.Odometer,
		Pais:         v.Country,
	}
	if v.PhotoURL != "" {
		url := v.PhotoURL
		dto.FotoURL = &url
	}
	return dto
}

func toActivityDTOs(views []service.ActivityView) []ActivityDTO {
	dtos := make([]ActivityDTO, len(views))
	for i, v := range views {
		dtos[i] = toActivityDTO(v)
	}
	return dtos
}
