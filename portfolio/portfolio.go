package portfolio

import (
	"context"
	"encoding/json"

	"folio/database"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var logger = loggo.GetLogger("folio.portfolio")

type SkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Portfolio is everything the landing page and the terminal render.
type Portfolio struct {
	PersonalInfo *database.PersonalInfo    `json:"personalInfo"`
	Experience   []database.WorkExperience `json:"experience"`
	Education    []database.Education      `json:"education"`
	Skills       []SkillGroup              `json:"skills"`
	Projects     []database.Project        `json:"projects"`
}

// Repository reads portfolio content. The only writer is Seed.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// byOrder sorts on the quoted "order" column, then insertion.
func byOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).Order("id")
}

// GetPersonalInfo returns the first personal info row, or nil when the
// table is empty.
func (r *Repository) GetPersonalInfo(ctx context.Context) (*database.PersonalInfo, error) {
	var rows []database.PersonalInfo
	if err := r.db.WithContext(ctx).Order("id").Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Annotate(err, "loading personal info")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *Repository) GetWorkExperience(ctx context.Context) ([]database.WorkExperience, error) {
	var experience []database.WorkExperience
	if err := byOrder(r.db.WithContext(ctx)).Find(&experience).Error; err != nil {
		return nil, errors.Annotate(err, "loading work experience")
	}
	if len(experience) == 0 {
		return experience, nil
	}

	ids := make([]uint, len(experience))
	for i, e := range experience {
		ids[i] = e.ID
	}
	var skills []database.ExperienceSkill
	if err := r.db.WithContext(ctx).Where("experience_id IN ?", ids).Order("id").Find(&skills).Error; err != nil {
		return nil, errors.Annotate(err, "loading experience skills")
	}

	byExperience := make(map[uint][]string, len(experience))
	for _, s := range skills {
		byExperience[s.ExperienceID] = append(byExperience[s.ExperienceID], s.Skill)
	}
	for i := range experience {
		experience[i].Skills = byExperience[experience[i].ID]
		if experience[i].Skills == nil {
			experience[i].Skills = []string{}
		}
	}
	return experience, nil
}

func (r *Repository) GetEducation(ctx context.Context) ([]database.Education, error) {
	var education []database.Education
	if err := byOrder(r.db.WithContext(ctx)).Find(&education).Error; err != nil {
		return nil, errors.Annotate(err, "loading education")
	}
	return education, nil
}

// GetSkills groups skills by category. Groups appear in the order of their
// first skill, and skills keep their own order within a group.
func (r *Repository) GetSkills(ctx context.Context) ([]SkillGroup, error) {
	var skills []database.Skill
	if err := byOrder(r.db.WithContext(ctx)).Find(&skills).Error; err != nil {
		return nil, errors.Annotate(err, "loading skills")
	}

	groups := []SkillGroup{}
	index := make(map[string]int)
	for _, s := range skills {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s.Skill)
	}
	return groups, nil
}

func (r *Repository) GetProjects(ctx context.Context) ([]database.Project, error) {
	var projects []database.Project
	if err := byOrder(r.db.WithContext(ctx)).Find(&projects).Error; err != nil {
		return nil, errors.Annotate(err, "loading projects")
	}
	return projects, nil
}

// Load gathers the whole portfolio. A missing personal info row is not an
// error here; callers that need it check PersonalInfo.
func (r *Repository) Load(ctx context.Context) (*Portfolio, error) {
	var (
		p   Portfolio
		err error
	)
	if p.PersonalInfo, err = r.GetPersonalInfo(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if p.Experience, err = r.GetWorkExperience(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if p.Education, err = r.GetEducation(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if p.Skills, err = r.GetSkills(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if p.Projects, err = r.GetProjects(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	return &p, nil
}

// TechStack decodes a project's JSON tech list. Malformed values decode to
// an empty list.
func TechStack(p database.Project) []string {
	var stack []string
	if len(p.TechStack) == 0 {
		return stack
	}
	if err := json.Unmarshal(p.TechStack, &stack); err != nil {
		logger.Warningf("project %d has malformed tech stack: %v", p.ID, err)
		return nil
	}
	return stack
}
