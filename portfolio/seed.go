package portfolio

import (
	"context"
	"encoding/json"
	"os"

	"folio/database"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedFile is the on-disk shape of the portfolio. Slice order becomes the
// stored order.
type SeedFile struct {
	PersonalInfo database.PersonalInfo     `yaml:"personal_info"`
	Experience   []database.WorkExperience `yaml:"experience"`
	Education    []database.Education      `yaml:"education"`
	Skills       []SeedSkillGroup          `yaml:"skills"`
	Projects     []SeedProject             `yaml:"projects"`
}

type SeedSkillGroup struct {
	Category string   `yaml:"category"`
	Skills   []string `yaml:"skills"`
}

type SeedProject struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	TechStack   []string `yaml:"tech_stack"`
	URL         string   `yaml:"url"`
}

func LoadSeed(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading seed file %s", path)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, errors.Annotate(err, "parsing seed file")
	}
	if seed.PersonalInfo.Name == "" {
		return nil, errors.NotValidf("seed without personal_info.name")
	}
	for i, g := range seed.Skills {
		if g.Category == "" {
			return nil, errors.NotValidf("skill group %d without category", i)
		}
	}
	return &seed, nil
}

// Seed replaces every portfolio row with the contents of seed in a single
// transaction. Blog and admin tables are left alone.
func Seed(ctx context.Context, db *gorm.DB, seed *SeedFile) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// children first
		for _, model := range []any{
			&database.ExperienceSkill{},
			&database.WorkExperience{},
			&database.Education{},
			&database.Skill{},
			&database.Project{},
			&database.PersonalInfo{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return errors.Annotatef(err, "clearing %T", model)
			}
		}

		info := seed.PersonalInfo
		info.ID = 0
		if err := tx.Create(&info).Error; err != nil {
			return errors.Annotate(err, "inserting personal info")
		}

		for i, e := range seed.Experience {
			e.ID = 0
			e.Order = i
			if err := tx.Create(&e).Error; err != nil {
				return errors.Annotatef(err, "inserting experience at %s", e.Company)
			}
			for _, skill := range e.Skills {
				row := database.ExperienceSkill{ExperienceID: e.ID, Skill: skill}
				if err := tx.Create(&row).Error; err != nil {
					return errors.Annotatef(err, "inserting skill %q", skill)
				}
			}
		}

		for i, ed := range seed.Education {
			ed.ID = 0
			ed.Order = i
			if err := tx.Create(&ed).Error; err != nil {
				return errors.Annotatef(err, "inserting education at %s", ed.Institution)
			}
		}

		for _, g := range seed.Skills {
			for i, skill := range g.Skills {
				row := database.Skill{Category: g.Category, Skill: skill, Order: i}
				if err := tx.Create(&row).Error; err != nil {
					return errors.Annotatef(err, "inserting skill %q", skill)
				}
			}
		}

		for i, p := range seed.Projects {
			stack := p.TechStack
			if stack == nil {
				stack = []string{}
			}
			encoded, err := json.Marshal(stack)
			if err != nil {
				return errors.Trace(err)
			}
			row := database.Project{
				Title:       p.Title,
				Description: p.Description,
				TechStack:   datatypes.JSON(encoded),
				Order:       i,
			}
			if p.URL != "" {
				url := p.URL
				row.URL = &url
			}
			if err := tx.Create(&row).Error; err != nil {
				return errors.Annotatef(err, "inserting project %q", p.Title)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}

	logger.Infof("seeded portfolio: %d jobs, %d schools, %d skill groups, %d projects",
		len(seed.Experience), len(seed.Education), len(seed.Skills), len(seed.Projects))
	return nil
}
