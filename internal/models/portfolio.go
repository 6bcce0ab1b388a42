package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the identity and timestamps every stored section shares.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Singleton sections: at most one document per collection.

type Header struct {
	Base         `bson:",inline"`
	FirstLetter  string `bson:"firstLetter" json:"firstLetter" validate:"required,max=4"`
	MiddleLetter string `bson:"middleLetter" json:"middleLetter" validate:"max=4"`
	LastLetter   string `bson:"lastLetter" json:"lastLetter" validate:"max=4"`
}

type Introduction struct {
	Base         `bson:",inline"`
	WelcomeText  string `bson:"welcomeText" json:"welcomeText"`
	FirstName    string `bson:"firstName" json:"firstName" validate:"required"`
	LastName     string `bson:"lastName" json:"lastName"`
	JobTitle     string `bson:"jobTitle" json:"jobTitle"`
	Description  string `bson:"description" json:"description"`
	MyResume     string `bson:"myResume" json:"myResume"`
	ProfileImage string `bson:"profileImage" json:"profileImage"`
}

type About struct {
	Base         `bson:",inline"`
	LottieURL    string   `bson:"lottieURL" json:"lottieURL"`
	Description1 string   `bson:"description1" json:"description1" validate:"required"`
	Description2 string   `bson:"description2" json:"description2"`
	Message      string   `bson:"message" json:"message"`
	Skills       []string `bson:"skills" json:"skills"`
}

type Contact struct {
	Base      `bson:",inline"`
	Name      string `bson:"name" json:"name" validate:"required"`
	Gender    string `bson:"gender" json:"gender"`
	Email     string `bson:"email" json:"email" validate:"required"`
	Mobile    string `bson:"mobile" json:"mobile"`
	Age       string `bson:"age" json:"age"`
	Address   string `bson:"address" json:"address"`
	LottieURL string `bson:"lottieURL" json:"lottieURL"`
}

type LeftSider struct {
	Base     `bson:",inline"`
	Email    string `bson:"email" json:"email" validate:"required"`
	Mobile   string `bson:"mobile" json:"mobile"`
	Github   string `bson:"github" json:"github"`
	Linkedin string `bson:"linkedin" json:"linkedin"`
}

type Footer struct {
	Base       `bson:",inline"`
	FirstLine  string `bson:"firstLine" json:"firstLine" validate:"required"`
	SecondLine string `bson:"secondLine" json:"secondLine"`
}

// Multi sections: zero or more documents, read back in insertion order.

type SkillItem struct {
	Name  string `bson:"name" json:"name" validate:"required"`
	Level string `bson:"level" json:"level"`
}

type Skill struct {
	Base   `bson:",inline"`
	Title  string      `bson:"title" json:"title" validate:"required"`
	Skills []SkillItem `bson:"skills" json:"skills" validate:"dive"`
}

type Experience struct {
	Base        `bson:",inline"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Period      string `bson:"period" json:"period" validate:"required"`
	Company     string `bson:"company" json:"company" validate:"required"`
	Description string `bson:"description" json:"description" validate:"required"`
}

type Project struct {
	Base         `bson:",inline"`
	Title        string   `bson:"title" json:"title" validate:"required"`
	Description  string   `bson:"description" json:"description" validate:"required"`
	Image        string   `bson:"image" json:"image"`
	ProjectLink  string   `bson:"project_link" json:"project_link"`
	GithubLink   string   `bson:"github_link" json:"github_link"`
	Technologies []string `bson:"technologies" json:"technologies" validate:"required,min=1,dive,required"`
}

type Education struct {
	Base        `bson:",inline"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Institution string `bson:"institution" json:"institution" validate:"required"`
	Degree      string `bson:"degree" json:"degree"`
	Period      string `bson:"period" json:"period" validate:"required"`
	Description string `bson:"description" json:"description"`
	Grade       string `bson:"grade" json:"grade"`
	Location    string `bson:"location" json:"location"`
}

type Certificate struct {
	Base        `bson:",inline"`
	Title       string `bson:"title" json:"title" validate:"required"`
	Issuer      string `bson:"issuer" json:"issuer" validate:"required"`
	IssueDate   string `bson:"issueDate" json:"issueDate"`
	Image       string `bson:"image" json:"image"`
	Description string `bson:"description" json:"description"`
}

// PortfolioData is the composite read payload served to the site frontend.
type PortfolioData struct {
	Headers      *Header       `json:"headers"`
	Introduction *Introduction `json:"introduction"`
	About        *About        `json:"about"`
	Skills       []Skill       `json:"skills"`
	Experiences  []Experience  `json:"experiences"`
	Projects     []Project     `json:"projects"`
	Educations   []Education   `json:"educations"`
	Certificates []Certificate `json:"certificates"`
	Contacts     *Contact      `json:"contacts"`
	LeftSides    *LeftSider    `json:"leftSides"`
	Footer       *Footer       `json:"footer"`
	SocialStats  *SocialStats  `json:"socialStats"`
}
