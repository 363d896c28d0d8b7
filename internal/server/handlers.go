package server

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/netfield/internal/content"
	"github.com/Zachkp/netfield/internal/field"
	"github.com/Zachkp/netfield/internal/logger"
)

var errNoStore = errors.New("content store not configured")

// Home page: the whole portfolio plus the backdrop canvas.
func (s *Server) handleIndex(c *gin.Context) {
	if s.store == nil {
		s.renderError(c, http.StatusServiceUnavailable, errNoStore)
		return
	}
	ctx := c.Request.Context()

	var (
		profile    *content.Profile
		projects   []content.Project
		experience []content.Experience
		education  []content.Education
		skills     []content.SkillCategory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = s.store.Profile(gctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.store.Projects(gctx)
		return err
	})
	g.Go(func() (err error) {
		experience, err = s.store.Experience(gctx)
		return err
	})
	g.Go(func() (err error) {
		education, err = s.store.Education(gctx)
		return err
	})
	g.Go(func() (err error) {
		skills, err = s.store.Skills(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"profile":    profile,
		"projects":   projects,
		"experience": experience,
		"education":  education,
		"skills":     skills,
		"backdrop":   s.backdropConfig(),
		"fps":        s.cfg.Backdrop.FPS,
	})
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	s.log.Errorw("page failed", logger.FieldPath, c.Request.URL.Path, logger.FieldError, err)
	c.HTML(status, "error.html", gin.H{
		"error": "Sorry, this page could not be loaded. Please try again later.",
	})
}

func (s *Server) handleProfile(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoStore.Error()})
		return
	}
	p, err := s.store.Profile(c.Request.Context())
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case err != nil:
		s.log.Errorw("profile query failed", logger.FieldError, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
	default:
		c.JSON(http.StatusOK, p)
	}
}

// contentList adapts a store query to a JSON list endpoint.
func (s *Server) contentList(name string, query func(ctx context.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errNoStore.Error()})
			return
		}
		items, err := query(c.Request.Context())
		if err != nil {
			s.log.Errorw("content query failed", "content", name, logger.FieldError, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + name})
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.stats.snapshot())
}

// backdropConfig is what the page needs to know about the field.
func (s *Server) backdropConfig() field.Config {
	return s.cfg.Backdrop.FieldConfig()
}
