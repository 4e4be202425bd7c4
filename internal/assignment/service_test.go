package assignment

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctx         context.Context
	svc         *Service
	teamID      id.TeamID
	challengeID id.ChallengeID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(NewMemoryStore(), WithLogger(logger))
	s.teamID = id.TeamID(uuid.New())
	s.challengeID = id.ChallengeID(uuid.New())
}

func (s *ServiceSuite) TestClaim() {
	a, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().NoError(err)
	s.Equal("alice", a.Member)
	s.Equal(s.teamID, a.TeamID)
	s.False(a.ClaimedAt.IsZero())
}

func (s *ServiceSuite) TestClaimValidation() {
	s.Run("nil team", func() {
		_, err := s.svc.Claim(s.ctx, id.TeamID{}, s.challengeID, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("nil challenge", func() {
		_, err := s.svc.Claim(s.ctx, s.teamID, id.ChallengeID{}, "alice")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("blank member", func() {
		_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("member too long", func() {
		_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, strings.Repeat("x", 65))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestDoubleClaimConflicts() {
	_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().NoError(err)

	_, err = s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestSeveralMembersMayClaimSameChallenge() {
	_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().NoError(err)
	_, err = s.svc.Claim(s.ctx, s.teamID, s.challengeID, "bob")
	s.Require().NoError(err)

	claims, err := s.svc.ListByChallenge(s.ctx, s.teamID, s.challengeID)
	s.Require().NoError(err)
	s.Len(claims, 2)
}

func (s *ServiceSuite) TestUnclaim() {
	_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Unclaim(s.ctx, s.teamID, s.challengeID, "alice"))

	claims, err := s.svc.ListByTeam(s.ctx, s.teamID)
	s.Require().NoError(err)
	s.Empty(claims)
}

func (s *ServiceSuite) TestUnclaimMissing() {
	err := s.svc.Unclaim(s.ctx, s.teamID, s.challengeID, "nobody")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListByTeamScopesToTeam() {
	other := id.TeamID(uuid.New())
	_, err := s.svc.Claim(s.ctx, s.teamID, s.challengeID, "alice")
	s.Require().NoError(err)
	_, err = s.svc.Claim(s.ctx, other, s.challengeID, "mallory")
	s.Require().NoError(err)

	claims, err := s.svc.ListByTeam(s.ctx, s.teamID)
	s.Require().NoError(err)
	s.Require().Len(claims, 1)
	s.Equal("alice", claims[0].Member)
}
