package storage

import (
	"github.com/lcalzada-xor/biowatch/internal/core/domain"
)

func configurationToDomain(m ConfigurationModel) domain.ScoringConfiguration {
	return domain.ScoringConfiguration{
		ID:                    m.ID,
		UserID:                m.UserID,
		BioRelevanceWeight:    m.BioRelevanceWeight,
		CVSSWeight:            m.CVSSWeight,
		SoleSourceMultiplier:  m.SoleSourceMultiplier,
		HumanImpactWeight:     m.HumanImpactWeight,
		BioRelevanceThreshold: m.BioRelevanceThreshold,
		UpdatedAt:             m.UpdatedAt,
	}
}

func configurationToModel(c domain.ScoringConfiguration) ConfigurationModel {
	return ConfigurationModel{
		ID:                    c.ID,
		UserID:                c.UserID,
		BioRelevanceWeight:    c.BioRelevanceWeight,
		CVSSWeight:            c.CVSSWeight,
		SoleSourceMultiplier:  c.SoleSourceMultiplier,
		HumanImpactWeight:     c.HumanImpactWeight,
		BioRelevanceThreshold: c.BioRelevanceThreshold,
		UpdatedAt:             c.UpdatedAt,
	}
}

func commentToDomain(m CommentModel) domain.Comment {
	return domain.Comment{
		ID:              m.ID,
		Content:         m.Content,
		Author:          m.Author,
		VulnerabilityID: m.VulnerabilityID,
		CommentType:     domain.CommentType(m.CommentType),
		Action:          m.Action,
		CreatedAt:       m.CreatedAt,
	}
}

func commentToModel(c domain.Comment) CommentModel {
	typ := string(c.CommentType)
	if typ == "" {
		typ = string(domain.CommentGeneral)
	}
	return CommentModel{
		ID:              c.ID,
		Content:         c.Content,
		Author:          c.Author,
		VulnerabilityID: c.VulnerabilityID,
		CommentType:     typ,
		Action:          c.Action,
		CreatedAt:       c.CreatedAt,
	}
}
