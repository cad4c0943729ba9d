package portfolio

import (
	"context"
	"testing"

	"folio/database"
	"folio/database/dbtest"

	"github.com/juju/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSeed = `
personal_info:
  name: Ada Lovelace
  title: Analyst
  tagline: Poetical science
  bio: Notes on the engine.
  location: London
  email: ada@example.com
  github: https://github.com/ada
  linkedin: https://linkedin.com/in/ada
experience:
  - company: Engine Co
    position: Programmer
    type: Full-time
    duration: 1842 - 1843
    location: London
    description: Wrote the first program.
    skills: [Bernoulli numbers, Punch cards, Notes]
  - company: Royal Society
    position: Correspondent
    type: Part-time
    duration: "1840"
    location: Remote
    description: Letters.
education:
  - institution: Home
    degree: Private tutoring
    field: Mathematics
    duration: 1830 - 1835
skills:
  - category: Mathematics
    skills: [Analysis, Logic]
  - category: Writing
    skills: [Notes]
projects:
  - title: Note G
    description: An algorithm for the Analytical Engine.
    tech_stack: [Analytical Engine, Punch cards]
    url: https://example.com/note-g
  - title: Flyology
    description: A study of flight.
`

func seededRepository(t *testing.T) (*Repository, *gorm.DB) {
	db := dbtest.Open(t)
	seed, err := ParseSeed([]byte(testSeed))
	require.NoError(t, err)
	require.NoError(t, Seed(context.Background(), db, seed))
	return NewRepository(db), db
}

func TestEmptyPortfolio(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(dbtest.Open(t))

	info, err := r.GetPersonalInfo(ctx)
	require.NoError(t, err)
	require.Nil(t, info)

	p, err := r.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, p.PersonalInfo)
	require.Empty(t, p.Experience)
	require.Empty(t, p.Skills)
}

func TestLoadSeededPortfolio(t *testing.T) {
	ctx := context.Background()
	r, _ := seededRepository(t)

	p, err := r.Load(ctx)
	require.NoError(t, err)

	require.NotNil(t, p.PersonalInfo)
	require.Equal(t, "Ada Lovelace", p.PersonalInfo.Name)
	require.Equal(t, "https://github.com/ada", p.PersonalInfo.GitHub)

	require.Len(t, p.Experience, 2)
	require.Equal(t, "Engine Co", p.Experience[0].Company)
	require.Equal(t, []string{"Bernoulli numbers", "Punch cards", "Notes"}, p.Experience[0].Skills)
	require.Equal(t, []string{}, p.Experience[1].Skills)

	require.Len(t, p.Education, 1)
	require.Equal(t, "Mathematics", p.Education[0].Field)

	require.Equal(t, []SkillGroup{
		{Category: "Mathematics", Skills: []string{"Analysis", "Logic"}},
		{Category: "Writing", Skills: []string{"Notes"}},
	}, p.Skills)

	require.Len(t, p.Projects, 2)
	require.Equal(t, "Note G", p.Projects[0].Title)
	require.Equal(t, []string{"Analytical Engine", "Punch cards"}, TechStack(p.Projects[0]))
	require.Equal(t, "https://example.com/note-g", *p.Projects[0].URL)
	require.Nil(t, p.Projects[1].URL)
	require.Empty(t, TechStack(p.Projects[1]))
}

func TestOrderColumnWins(t *testing.T) {
	ctx := context.Background()
	r, db := seededRepository(t)

	// swap the stored order of the two jobs
	require.NoError(t, db.Model(&database.WorkExperience{}).Where("company = ?", "Engine Co").Update("order", 5).Error)

	experience, err := r.GetWorkExperience(ctx)
	require.NoError(t, err)
	require.Equal(t, "Royal Society", experience[0].Company)
	require.Equal(t, "Engine Co", experience[1].Company)
}

func TestSeedReplacesRows(t *testing.T) {
	ctx := context.Background()
	r, db := seededRepository(t)

	seed, err := ParseSeed([]byte(`
personal_info:
  name: Grace Hopper
experience:
  - company: Navy
    skills: [COBOL]
`))
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, db, seed))

	p, err := r.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", p.PersonalInfo.Name)
	require.Len(t, p.Experience, 1)
	require.Equal(t, []string{"COBOL"}, p.Experience[0].Skills)
	require.Empty(t, p.Education)
	require.Empty(t, p.Skills)
	require.Empty(t, p.Projects)

	var skills int64
	require.NoError(t, db.Model(&database.ExperienceSkill{}).Count(&skills).Error)
	require.EqualValues(t, 1, skills)
}

func TestParseSeedErrors(t *testing.T) {
	_, err := ParseSeed([]byte("personal_info: [unclosed"))
	require.Error(t, err)

	_, err = ParseSeed([]byte("experience: []"))
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)

	_, err = ParseSeed([]byte("personal_info: {name: x}\nskills: [{skills: [a]}]"))
	require.True(t, errors.Is(err, errors.NotValid), "got %v", err)
}

func TestShippedSeedFileLoads(t *testing.T) {
	seed, err := LoadSeed("../seed/portfolio.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, seed.PersonalInfo.Name)
	require.NotEmpty(t, seed.Experience)
	require.NotEmpty(t, seed.Skills)

	db := dbtest.Open(t)
	require.NoError(t, Seed(context.Background(), db, seed))
}
