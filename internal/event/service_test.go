package event

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

func randomEventID() id.EventID {
	return id.EventID(uuid.New())
}

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
	svc *Service
	now time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(NewMemoryStore(), WithLogger(logger))
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *ServiceSuite) validSpec() Spec {
	return Spec{
		Name:     "spring-quals",
		URL:      "https://quals.example.org",
		TeamMode: true,
		StartsAt: s.now,
		EndsAt:   s.now.Add(48 * time.Hour),
	}
}

func (s *ServiceSuite) TestCreate() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)
	s.False(e.ID.IsNil())
	s.Equal("spring-quals", e.Name)
	s.True(e.TeamMode)
}

func (s *ServiceSuite) TestCreateValidation() {
	s.Run("missing name", func() {
		spec := s.validSpec()
		spec.Name = ""
		_, err := s.svc.Create(s.ctx, spec)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("ends before it starts", func() {
		spec := s.validSpec()
		spec.EndsAt = spec.StartsAt.Add(-time.Hour)
		_, err := s.svc.Create(s.ctx, spec)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestChangeTime() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)

	updated, err := s.svc.ChangeTime(s.ctx, e.ID, s.now.Add(time.Hour), s.now.Add(72*time.Hour))
	s.Require().NoError(err)
	s.Equal(s.now.Add(time.Hour), updated.StartsAt)
	s.Equal(s.now.Add(72*time.Hour), updated.EndsAt)

	_, err = s.svc.ChangeTime(s.ctx, e.ID, s.now, s.now.Add(-time.Hour))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestChangeURL() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)

	updated, err := s.svc.ChangeURL(s.ctx, e.ID, "https://finals.example.org")
	s.Require().NoError(err)
	s.Equal("https://finals.example.org", updated.URL)

	_, err = s.svc.ChangeURL(s.ctx, e.ID, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestChangeMode() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)
	s.Require().True(e.TeamMode)

	solo, err := s.svc.ChangeMode(s.ctx, e.ID, false)
	s.Require().NoError(err)
	s.False(solo.TeamMode)

	teams, err := s.svc.ChangeMode(s.ctx, e.ID, true)
	s.Require().NoError(err)
	s.True(teams.TeamMode)
}

func (s *ServiceSuite) TestSetCredentials() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)

	updated, err := s.svc.SetCredentials(s.ctx, e.ID, "team-login", "hunter2")
	s.Require().NoError(err)
	s.Equal("team-login", updated.Username)
	s.Equal("hunter2", updated.Password)
}

// Info is the non-admin view; credentials must not appear in it.
func (s *ServiceSuite) TestGetInfoOmitsCredentials() {
	e, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)
	_, err = s.svc.SetCredentials(s.ctx, e.ID, "team-login", "hunter2")
	s.Require().NoError(err)

	info, err := s.svc.GetInfo(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Name, info.Name)
	s.Equal(e.URL, info.URL)
}

func (s *ServiceSuite) TestUpdateUnknownEvent() {
	_, err := s.svc.ChangeURL(s.ctx, id.EventID{}, "https://x.example.org")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.svc.GetInfo(s.ctx, randomEventID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestList() {
	_, err := s.svc.Create(s.ctx, s.validSpec())
	s.Require().NoError(err)

	spec := s.validSpec()
	spec.Name = "autumn-finals"
	_, err = s.svc.Create(s.ctx, spec)
	s.Require().NoError(err)

	events, err := s.svc.List(s.ctx)
	s.Require().NoError(err)
	s.Len(events, 2)
}
