// Package content serves the static portfolio records shown on the site:
// profile, projects, experience, education and skills. Records are loaded
// once at startup and only read afterwards.
package content

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a single record lookup finds nothing.
var ErrNotFound = errors.New("content not found")

type Profile struct {
	Name     string `json:"name"`
	JobTitle string `json:"job_title"`
	About    string `json:"about"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
	Twitter  string `json:"twitter,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
}

type Project struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	DemoURL      string   `json:"demo_url,omitempty"`
	GitHubURL    string   `json:"github_url,omitempty"`
	Technologies []string `json:"technologies"`
	Features     []string `json:"features"`
}

type Experience struct {
	ID      int64    `json:"id"`
	Role    string   `json:"role"`
	Company string   `json:"company"`
	Period  string   `json:"period"`
	Details []string `json:"details"`
}

type Education struct {
	ID          int64    `json:"id"`
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Period      string   `json:"period"`
	Details     []string `json:"details"`
}

type Skill struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Logo  string `json:"logo"`
	Level int    `json:"level"`
	Desc  string `json:"desc,omitempty"`
	Link  string `json:"link,omitempty"`
}

type SkillCategory struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Skills []Skill `json:"skills"`
}

// Portfolio is the full record set used to seed a store.
type Portfolio struct {
	Profile    Profile
	Projects   []Project
	Experience []Experience
	Education  []Education
	Skills     []SkillCategory
}

// Store reads portfolio records from SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS profile (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	name TEXT NOT NULL,
	job_title TEXT NOT NULL,
	about TEXT NOT NULL,
	phone TEXT, email TEXT, location TEXT,
	linkedin TEXT, github TEXT, twitter TEXT, dribbble TEXT
);
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	image TEXT NOT NULL,
	demo_url TEXT, github_url TEXT,
	technologies TEXT NOT NULL DEFAULT '[]',
	features TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS experience (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	company TEXT NOT NULL,
	period TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS education (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	degree TEXT NOT NULL,
	institution TEXT NOT NULL,
	period TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS skill_categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS skills (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NOT NULL REFERENCES skill_categories(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	logo TEXT NOT NULL,
	level INTEGER NOT NULL DEFAULT 80,
	description TEXT, link TEXT
);`

// Open connects to dsn (":memory:" keeps everything in process) and creates
// the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open content database")
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create content schema")
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle whose schema is already in place.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed replaces every record with p.
func (s *Store) Seed(ctx context.Context, p Portfolio) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin seed")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"skills", "skill_categories", "education", "experience", "projects", "profile"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrapf(err, "clear %s", table)
		}
	}

	pr := p.Profile
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO profile (id, name, job_title, about, phone, email, location, linkedin, github, twitter, dribbble)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pr.Name, pr.JobTitle, pr.About, pr.Phone, pr.Email, pr.Location,
		pr.LinkedIn, pr.GitHub, pr.Twitter, pr.Dribbble); err != nil {
		return errors.Wrap(err, "insert profile")
	}

	for _, pj := range p.Projects {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO projects (title, description, image, demo_url, github_url, technologies, features)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			pj.Title, pj.Description, pj.Image, pj.DemoURL, pj.GitHubURL,
			jsonList(pj.Technologies), jsonList(pj.Features)); err != nil {
			return errors.Wrapf(err, "insert project %q", pj.Title)
		}
	}

	for _, ex := range p.Experience {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO experience (role, company, period, details) VALUES (?, ?, ?, ?)`,
			ex.Role, ex.Company, ex.Period, jsonList(ex.Details)); err != nil {
			return errors.Wrapf(err, "insert experience %q", ex.Role)
		}
	}

	for _, ed := range p.Education {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO education (degree, institution, period, details) VALUES (?, ?, ?, ?)`,
			ed.Degree, ed.Institution, ed.Period, jsonList(ed.Details)); err != nil {
			return errors.Wrapf(err, "insert education %q", ed.Degree)
		}
	}

	for _, cat := range p.Skills {
		res, err := tx.ExecContext(ctx, `INSERT INTO skill_categories (name) VALUES (?)`, cat.Name)
		if err != nil {
			return errors.Wrapf(err, "insert skill category %q", cat.Name)
		}
		catID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "skill category id")
		}
		for _, sk := range cat.Skills {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO skills (category_id, name, logo, level, description, link)
				VALUES (?, ?, ?, ?, ?, ?)`,
				catID, sk.Name, sk.Logo, sk.Level, sk.Desc, sk.Link); err != nil {
				return errors.Wrapf(err, "insert skill %q", sk.Name)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit seed")
	}
	return nil
}

// Profile returns the single profile row.
func (s *Store) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	var phone, email, location, linkedin, github, twitter, dribbble sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT name, job_title, about, phone, email, location, linkedin, github, twitter, dribbble
		FROM profile WHERE id = 1`).
		Scan(&p.Name, &p.JobTitle, &p.About, &phone, &email, &location, &linkedin, &github, &twitter, &dribbble)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query profile")
	}
	p.Phone, p.Email, p.Location = phone.String, email.String, location.String
	p.LinkedIn, p.GitHub = linkedin.String, github.String
	p.Twitter, p.Dribbble = twitter.String, dribbble.String
	return &p, nil
}

func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, image, COALESCE(demo_url, ''), COALESCE(github_url, ''), technologies, features
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query projects")
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		var tech, feats string
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Image, &p.DemoURL, &p.GitHubURL, &tech, &feats); err != nil {
			return nil, errors.Wrap(err, "scan project")
		}
		if p.Technologies, err = parseList(tech); err != nil {
			return nil, errors.Wrapf(err, "project %d technologies", p.ID)
		}
		if p.Features, err = parseList(feats); err != nil {
			return nil, errors.Wrapf(err, "project %d features", p.ID)
		}
		projects = append(projects, p)
	}
	return projects, errors.Wrap(rows.Err(), "iterate projects")
}

func (s *Store) Experience(ctx context.Context) ([]Experience, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, role, company, period, details FROM experience ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query experience")
	}
	defer rows.Close()

	out := []Experience{}
	for rows.Next() {
		var e Experience
		var details string
		if err := rows.Scan(&e.ID, &e.Role, &e.Company, &e.Period, &details); err != nil {
			return nil, errors.Wrap(err, "scan experience")
		}
		if e.Details, err = parseList(details); err != nil {
			return nil, errors.Wrapf(err, "experience %d details", e.ID)
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterate experience")
}

func (s *Store) Education(ctx context.Context) ([]Education, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, degree, institution, period, details FROM education ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query education")
	}
	defer rows.Close()

	out := []Education{}
	for rows.Next() {
		var e Education
		var details string
		if err := rows.Scan(&e.ID, &e.Degree, &e.Institution, &e.Period, &details); err != nil {
			return nil, errors.Wrap(err, "scan education")
		}
		if e.Details, err = parseList(details); err != nil {
			return nil, errors.Wrapf(err, "education %d details", e.ID)
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "iterate education")
}

// Skills returns every category with its skills nested, in insertion order.
func (s *Store) Skills(ctx context.Context) ([]SkillCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, s.id, s.name, s.logo, s.level, COALESCE(s.description, ''), COALESCE(s.link, '')
		FROM skill_categories c
		LEFT JOIN skills s ON s.category_id = c.id
		ORDER BY c.id, s.id`)
	if err != nil {
		return nil, errors.Wrap(err, "query skills")
	}
	defer rows.Close()

	cats := []SkillCategory{}
	for rows.Next() {
		var catID int64
		var catName string
		var skillID sql.NullInt64
		var name, logo, desc, link sql.NullString
		var level sql.NullInt64
		if err := rows.Scan(&catID, &catName, &skillID, &name, &logo, &level, &desc, &link); err != nil {
			return nil, errors.Wrap(err, "scan skill")
		}
		if len(cats) == 0 || cats[len(cats)-1].ID != catID {
			cats = append(cats, SkillCategory{ID: catID, Name: catName, Skills: []Skill{}})
		}
		if !skillID.Valid {
			continue
		}
		cat := &cats[len(cats)-1]
		cat.Skills = append(cat.Skills, Skill{
			ID:    skillID.Int64,
			Name:  name.String,
			Logo:  logo.String,
			Level: int(level.Int64),
			Desc:  desc.String,
			Link:  link.String,
		})
	}
	return cats, errors.Wrap(rows.Err(), "iterate skills")
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func parseList(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
