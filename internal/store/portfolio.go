package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// Portfolio holds one Sections store per portfolio collection.
type Portfolio struct {
	Headers       *Sections[models.Header]
	Introductions *Sections[models.Introduction]
	Abouts        *Sections[models.About]
	Skills        *Sections[models.Skill]
	Experiences   *Sections[models.Experience]
	Projects      *Sections[models.Project]
	Educations    *Sections[models.Education]
	Certificates  *Sections[models.Certificate]
	Contacts      *Sections[models.Contact]
	LeftSiders    *Sections[models.LeftSider]
	Footers       *Sections[models.Footer]
	SocialStats   *Sections[models.SocialStats]
}

func NewPortfolio(db *mongo.Database) *Portfolio {
	return &Portfolio{
		Headers:       NewSections[models.Header](db, HeadersCollection, true),
		Introductions: NewSections[models.Introduction](db, IntroductionsCollection, true),
		Abouts:        NewSections[models.About](db, AboutsCollection, true),
		Skills:        NewSections[models.Skill](db, SkillsCollection, false),
		Experiences:   NewSections[models.Experience](db, ExperiencesCollection, false),
		Projects:      NewSections[models.Project](db, ProjectsCollection, false),
		Educations:    NewSections[models.Education](db, EducationsCollection, false),
		Certificates:  NewSections[models.Certificate](db, CertificatesCollection, false),
		Contacts:      NewSections[models.Contact](db, ContactsCollection, true),
		LeftSiders:    NewSections[models.LeftSider](db, LeftSidersCollection, true),
		Footers:       NewSections[models.Footer](db, FootersCollection, true),
		SocialStats:   NewSections[models.SocialStats](db, SocialStatsCollection, true),
	}
}

// EnsureIndexes prepares every singleton collection.
func (p *Portfolio) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{HeadersCollection, p.Headers.EnsureIndexes},
		{IntroductionsCollection, p.Introductions.EnsureIndexes},
		{AboutsCollection, p.Abouts.EnsureIndexes},
		{ContactsCollection, p.Contacts.EnsureIndexes},
		{LeftSidersCollection, p.LeftSiders.EnsureIndexes},
		{FootersCollection, p.Footers.EnsureIndexes},
		{SocialStatsCollection, p.SocialStats.EnsureIndexes},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", s.name, err)
		}
	}
	return nil
}

// Stores exposes the collections through the service interfaces.
func (p *Portfolio) Stores() services.PortfolioStores {
	return services.PortfolioStores{
		Headers:       p.Headers,
		Introductions: p.Introductions,
		Abouts:        p.Abouts,
		Skills:        p.Skills,
		Experiences:   p.Experiences,
		Projects:      p.Projects,
		Educations:    p.Educations,
		Certificates:  p.Certificates,
		Contacts:      p.Contacts,
		LeftSiders:    p.LeftSiders,
		Footers:       p.Footers,
		SocialStats:   p.SocialStats,
	}
}
