package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
)

// seeder fills empty sections with placeholder content. Sections that
// already hold data are left alone, so running it twice is harmless.
type seeder struct {
	stores  services.PortfolioStores
	changes services.Invalidator
	logger  *zap.Logger
	created []string
}

func (s *seeder) run(ctx context.Context) error {
	steps := []func(context.Context) error{
		func(ctx context.Context) error {
			return seedOne(ctx, s, "Header", s.stores.Headers, &models.Header{
				FirstLetter: "Y", MiddleLetter: "O", LastLetter: "U",
			})
		},
		func(ctx context.Context) error {
			return seedOne(ctx, s, "Introduction", s.stores.Introductions, &models.Introduction{
				WelcomeText:  "Hi, I'm",
				FirstName:    "Your",
				LastName:     "Name",
				JobTitle:     "Full Stack Developer",
				Description:  "I am a passionate full-stack developer with expertise in modern web technologies.",
				MyResume:     "https://example.com/resume.pdf",
				ProfileImage: "https://via.placeholder.com/400x400",
			})
		},
		func(ctx context.Context) error {
			return seedOne(ctx, s, "About", s.stores.Abouts, &models.About{
				LottieURL:    "https://lottie.host/4d8ef5c7-0fbd-45d3-8504-a2b1b22e7c87/8n9PUnOF8M.json",
				Description1: "I am a dedicated software developer who enjoys building efficient and scalable web applications.",
				Description2: "I work across frontend and backend and like turning hard problems into simple products.",
				Message:      "Let's build something amazing together!",
				Skills:       []string{"Go", "TypeScript", "React", "MongoDB", "Redis", "AWS"},
			})
		},
		func(ctx context.Context) error {
			return seedMany(ctx, s, "Skill category", s.stores.Skills, []models.Skill{
				{Title: "Frontend", Skills: []models.SkillItem{{Name: "React", Level: "Advanced"}, {Name: "TypeScript", Level: "Intermediate"}}},
				{Title: "Backend", Skills: []models.SkillItem{{Name: "Go", Level: "Advanced"}, {Name: "PostgreSQL", Level: "Intermediate"}}},
			})
		},
		func(ctx context.Context) error {
			return seedMany(ctx, s, "Experience", s.stores.Experiences, []models.Experience{
				{Title: "Senior Full Stack Developer", Period: "2022 - Present", Company: "Tech Solutions Inc.", Description: "Leading development of scalable web applications and mentoring junior developers."},
				{Title: "Frontend Developer", Period: "2020 - 2022", Company: "Digital Agency Ltd.", Description: "Built responsive web applications for client projects."},
			})
		},
		func(ctx context.Context) error {
			return seedMany(ctx, s, "Project", s.stores.Projects, []models.Project{
				{Title: "E-Commerce Platform", Description: "Storefront with authentication, payments and an admin dashboard.", Image: "https://via.placeholder.com/600x400", ProjectLink: "https://example-ecommerce.com", GithubLink: "https://github.com/username/ecommerce", Technologies: []string{"React", "Go", "MongoDB"}},
				{Title: "Task Management App", Description: "Collaborative task board with real-time updates.", Image: "https://via.placeholder.com/600x400", ProjectLink: "https://example-tasks.com", GithubLink: "https://github.com/username/taskapp", Technologies: []string{"React", "WebSocket", "PostgreSQL"}},
			})
		},
		func(ctx context.Context) error {
			return seedMany(ctx, s, "Education", s.stores.Educations, []models.Education{
				{Title: "Computer Science", Institution: "University of Technology", Degree: "Bachelor of Science", Period: "2018 - 2022", Grade: "3.8 GPA", Location: "New York, USA"},
			})
		},
		func(ctx context.Context) error {
			return seedMany(ctx, s, "Certificate", s.stores.Certificates, []models.Certificate{
				{Title: "AWS Certified Solutions Architect", Issuer: "Amazon Web Services", IssueDate: "2023", Image: "https://via.placeholder.com/300x200"},
			})
		},
		func(ctx context.Context) error {
			return seedOne(ctx, s, "Contact", s.stores.Contacts, &models.Contact{
				Name: "Your Name", Gender: "Other", Email: "your.email@example.com", Mobile: "+1 (555) 123-4567",
				Age: "25", Address: "123 Tech Street, Innovation City",
			})
		},
		func(ctx context.Context) error {
			return seedOne(ctx, s, "LeftSider", s.stores.LeftSiders, &models.LeftSider{
				Email: "your.email@example.com", Mobile: "+1 (555) 123-4567",
				Github: "https://github.com/yourusername", Linkedin: "https://linkedin.com/in/yourprofile",
			})
		},
		func(ctx context.Context) error {
			return seedOne(ctx, s, "Footer", s.stores.Footers, &models.Footer{
				FirstLine: "Designed and Developed By", SecondLine: "Your Name",
			})
		},
		s.seedSocialStats,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) seedSocialStats(ctx context.Context) error {
	stats := services.NewSocialStatsService(s.stores.SocialStats, nil, s.changes, s.logger)
	existing, err := stats.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil && len(existing.Fields) > 0 {
		return nil
	}
	var id primitive.ObjectID
	if existing != nil {
		id = existing.ID
	}
	_, err = stats.ReplaceFields(ctx, id, []models.StatField{
		{ID: "years_experience", Name: "Years Experience", Value: 5, Category: "experience", Type: models.StatTypeStatic, Unit: "+", Enabled: true, Order: 0},
		{ID: "projects_completed", Name: "Projects Completed", Value: 50, Category: "projects", Type: models.StatTypeStatic, Unit: "+", Enabled: true, Order: 1},
		{ID: "happy_clients", Name: "Happy Clients", Value: 100, Category: "clients", Type: models.StatTypeStatic, Unit: "%", Enabled: true, Order: 2},
		{ID: "github_followers", Name: "GitHub Followers", Value: 0, Category: "social", Type: models.StatTypeDynamic, Unit: "+", Enabled: true, Order: 3, SourceURL: "https://github.com/yourusername"},
	})
	if err != nil {
		return err
	}
	s.created = append(s.created, "Social stats")
	return nil
}

func seedOne[T any](ctx context.Context, s *seeder, name string, store services.SectionStore[T], doc *T) error {
	svc := services.NewSectionService(name, store, true, s.changes)
	existing, err := svc.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if _, err := svc.Update(ctx, primitive.NilObjectID, doc); err != nil {
		return err
	}
	s.created = append(s.created, name)
	return nil
}

func seedMany[T any](ctx context.Context, s *seeder, name string, store services.SectionStore[T], docs []T) error {
	svc := services.NewSectionService(name, store, false, s.changes)
	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := range docs {
		if _, err := svc.Add(ctx, &docs[i]); err != nil {
			return err
		}
	}
	s.created = append(s.created, name)
	return nil
}
