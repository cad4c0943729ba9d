package database

import (
	"time"

	"gorm.io/datatypes"
)

// Models are declared without gorm.Model: soft deletes would keep slugs and
// usernames reserved, and the join rows rely on real cascade deletes.

type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:191" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AdminSession rows are keyed by the SHA-256 of the token handed to the
// browser; the plaintext token is never stored.
type AdminSession struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time

	User AdminUser `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type BlogPost struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Slug        string     `gorm:"uniqueIndex;not null;size:191" json:"slug"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"not null" json:"description"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	CoverImage  *string    `json:"coverImage,omitempty"`
	Published   bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
	ReadingTime int        `gorm:"not null;default:0" json:"readingTime"`
	Views       int64      `gorm:"not null;default:0" json:"views"`

	Tags []BlogTag `gorm:"-" json:"tags"`
}

type BlogTag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:191" json:"name"`
	Slug string `gorm:"uniqueIndex;not null;size:191" json:"slug"`
}

type BlogPostTag struct {
	ID     uint `gorm:"primaryKey"`
	PostID uint `gorm:"uniqueIndex:idx_post_tag;not null"`
	TagID  uint `gorm:"uniqueIndex:idx_post_tag;index;not null"`

	Post BlogPost `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Tag  BlogTag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

type PersonalInfo struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	Name     string `gorm:"not null" json:"name" yaml:"name"`
	Title    string `gorm:"not null" json:"title" yaml:"title"`
	Tagline  string `gorm:"not null" json:"tagline" yaml:"tagline"`
	Bio      string `gorm:"not null" json:"bio" yaml:"bio"`
	Location string `gorm:"not null" json:"location" yaml:"location"`
	Email    string `gorm:"not null" json:"email" yaml:"email"`
	GitHub   string `gorm:"column:github;not null" json:"github" yaml:"github"`
	LinkedIn string `gorm:"column:linkedin;not null" json:"linkedin" yaml:"linkedin"`
}

func (PersonalInfo) TableName() string { return "personal_info" }

type WorkExperience struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Company     string `gorm:"not null" json:"company" yaml:"company"`
	Position    string `gorm:"not null" json:"position" yaml:"position"`
	Type        string `gorm:"not null" json:"type" yaml:"type"`
	Duration    string `gorm:"not null" json:"duration" yaml:"duration"`
	Location    string `gorm:"not null" json:"location" yaml:"location"`
	Description string `gorm:"type:text;not null" json:"description" yaml:"description"`
	Order       int    `gorm:"column:order;not null;default:0" json:"order" yaml:"order"`

	Skills []string `gorm:"-" json:"skills" yaml:"skills"`
}

func (WorkExperience) TableName() string { return "work_experience" }

type ExperienceSkill struct {
	ID           uint   `gorm:"primaryKey"`
	ExperienceID uint   `gorm:"index;not null"`
	Skill        string `gorm:"not null"`

	Experience WorkExperience `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE"`
}

type Education struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Institution string `gorm:"not null" json:"institution" yaml:"institution"`
	Degree      string `gorm:"not null" json:"degree" yaml:"degree"`
	Field       string `gorm:"not null" json:"field" yaml:"field"`
	Duration    string `gorm:"not null" json:"duration" yaml:"duration"`
	Order       int    `gorm:"column:order;not null;default:0" json:"order" yaml:"order"`
}

func (Education) TableName() string { return "education" }

type Skill struct {
	ID       uint   `gorm:"primaryKey"`
	Category string `gorm:"not null"`
	Skill    string `gorm:"not null"`
	Order    int    `gorm:"column:order;not null;default:0"`
}

// Project.TechStack holds a JSON list of technology names.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	TechStack   datatypes.JSON `gorm:"not null" json:"techStack"`
	URL         *string        `json:"url,omitempty"`
	Order       int            `gorm:"column:order;not null;default:0" json:"order"`
}

// AllModels lists every table in dependency order (parents first).
func AllModels() []any {
	return []any{
		&AdminUser{},
		&AdminSession{},
		&BlogPost{},
		&BlogTag{},
		&BlogPostTag{},
		&PersonalInfo{},
		&WorkExperience{},
		&ExperienceSkill{},
		&Education{},
		&Skill{},
		&Project{},
	}
}
