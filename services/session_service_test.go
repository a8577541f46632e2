package services

import (
	"sync"
	"testing"

	"teamquiz/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateDeactivatesOthers(t *testing.T) {
	svc := newTestSessionService(t)

	first, err := svc.CreateSession("first")
	require.NoError(t, err)
	second, err := svc.CreateSession("second")
	require.NoError(t, err)
	third, err := svc.CreateSession("third")
	require.NoError(t, err)

	for _, id := range []string{first.ID, second.ID, third.ID} {
		require.NoError(t, svc.Activate(id))

		var active int64
		svc.db.Model(&models.GameSession{}).Where("is_active = ?", true).Count(&active)
		assert.EqualValues(t, 1, active)

		current, err := svc.ActiveSession()
		require.NoError(t, err)
		assert.Equal(t, id, current.ID)
	}
}

func TestActivateConcurrentKeepsSingleActive(t *testing.T) {
	svc := newTestSessionService(t)

	ids := make([]string, 6)
	for i := range ids {
		session, err := svc.CreateSession("session")
		require.NoError(t, err)
		ids[i] = session.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, svc.Activate(id))
		}(id)
	}
	wg.Wait()

	var active int64
	svc.db.Model(&models.GameSession{}).Where("is_active = ?", true).Count(&active)
	assert.EqualValues(t, 1, active)
}

func TestActivateUnknownSession(t *testing.T) {
	svc := newTestSessionService(t)
	assert.ErrorIs(t, svc.Activate("nope"), ErrSessionNotFound)
}

func TestBuzzFirstWins(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b")

	changed, err := svc.Buzz(session.ID, "team_a")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Buzz(session.ID, "team_b")
	require.NoError(t, err)
	assert.False(t, changed)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Session.ActiveTeamID)
	assert.Equal(t, "team_a", *snap.Session.ActiveTeamID)
	assert.True(t, snap.Session.BuzzerLocked)

	for _, team := range snap.Teams {
		switch team.ID {
		case "team_a":
			assert.Equal(t, models.StatusBuzzed, team.Status)
		case "team_b":
			assert.Equal(t, models.StatusWaiting, team.Status)
		}
	}
}

func TestBuzzConcurrentSingleWinner(t *testing.T) {
	svc := newTestSessionService(t)
	teamIDs := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}
	session := seedSession(t, svc, teamIDs...)

	var wg sync.WaitGroup
	wins := make(chan string, len(teamIDs))
	for _, id := range teamIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			changed, err := svc.Buzz(session.ID, id)
			assert.NoError(t, err)
			if changed {
				wins <- id
			}
		}(id)
	}
	wg.Wait()
	close(wins)

	var winners []string
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.True(t, snap.Session.BuzzerLocked)
	require.NotNil(t, snap.Session.ActiveTeamID)
	assert.Equal(t, winners[0], *snap.Session.ActiveTeamID)

	buzzed := 0
	for _, team := range snap.Teams {
		if team.Status == models.StatusBuzzed {
			buzzed++
			assert.Equal(t, winners[0], team.ID)
		}
	}
	assert.Equal(t, 1, buzzed)
}

func TestBuzzUnknownTeamLeavesBuzzerUnlocked(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")

	changed, err := svc.Buzz(session.ID, "ghost")
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.False(t, changed)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.False(t, snap.Session.BuzzerLocked)
	assert.Nil(t, snap.Session.ActiveTeamID)
}

func TestBuzzerLockedImpliesActiveTeam(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b")
	question := seedQuestion(t, svc, 3)

	_, err := svc.Buzz(session.ID, "team_b")
	require.NoError(t, err)

	checkInvariant := func() {
		snap, err := svc.Snapshot(session.ID)
		require.NoError(t, err)
		if snap.Session.BuzzerLocked {
			assert.NotNil(t, snap.Session.ActiveTeamID)
		}
	}

	checkInvariant()
	require.NoError(t, svc.AdvanceQuestion(session.ID, question.ID))
	checkInvariant()
	_, err = svc.Buzz(session.ID, "team_a")
	require.NoError(t, err)
	checkInvariant()
	require.NoError(t, svc.ResetBuzzer(session.ID))
	checkInvariant()
}

func TestAdvanceQuestionResetsBuzzer(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b")
	question := seedQuestion(t, svc, 3)

	_, err := svc.Buzz(session.ID, "team_a")
	require.NoError(t, err)

	require.NoError(t, svc.AdvanceQuestion(session.ID, question.ID))

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.False(t, snap.Session.BuzzerLocked)
	assert.Nil(t, snap.Session.ActiveTeamID)
	require.NotNil(t, snap.Session.CurrentQuestionID)
	assert.Equal(t, question.ID, *snap.Session.CurrentQuestionID)

	for _, team := range snap.Teams {
		assert.Equal(t, models.StatusWaiting, team.Status)
	}
}

func TestAdvanceQuestionIdempotent(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")
	question := seedQuestion(t, svc, 1)

	require.NoError(t, svc.AdvanceQuestion(session.ID, question.ID))
	require.NoError(t, svc.AdvanceQuestion(session.ID, question.ID))

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.False(t, snap.Session.BuzzerLocked)
	assert.Nil(t, snap.Session.ActiveTeamID)
	require.NotNil(t, snap.Session.CurrentQuestionID)
	assert.Equal(t, question.ID, *snap.Session.CurrentQuestionID)
}

func TestAdvanceQuestionUnknownQuestion(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")

	err := svc.AdvanceQuestion(session.ID, "nope")
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.Session.CurrentQuestionID)
}

func TestAdjustScore(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b")

	testCases := []struct {
		name     string
		points   []int
		expected int
	}{
		{name: "simple add", points: []int{10}, expected: 10},
		{name: "accumulates", points: []int{10, 5}, expected: 15},
		{name: "negative delta", points: []int{10, -3}, expected: 7},
		{name: "clamped at zero", points: []int{10, -50}, expected: 0},
		{name: "clamp then add", points: []int{10, -50, 4}, expected: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, svc.db.Model(&models.Team{}).Where("id = ?", "team_a").Update("score", 0).Error)

			var team *models.Team
			var err error
			for _, p := range tc.points {
				team, err = svc.AdjustScore(session.ID, "team_a", p)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, team.Score, 0)
			}
			assert.Equal(t, tc.expected, team.Score)
		})
	}

	// The other team is untouched throughout.
	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	for _, team := range snap.Teams {
		if team.ID == "team_b" {
			assert.Equal(t, 0, team.Score)
		}
	}
}

func TestAdjustScoreUnknownTeam(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")

	_, err := svc.AdjustScore(session.ID, "ghost", 10)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestSetStatusRejectsInvalidValue(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")

	err := svc.SetStatus(session.ID, "team_a", "sleeping")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, snap.Teams[0].Status)

	require.NoError(t, svc.SetStatus(session.ID, "team_a", models.StatusLocked))
	snap, err = svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLocked, snap.Teams[0].Status)
}

func TestSetActiveTeam(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b", "team_c")

	require.NoError(t, svc.SetStatus(session.ID, "team_c", models.StatusLocked))
	require.NoError(t, svc.SetActiveTeam(session.ID, "team_b"))

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	require.NotNil(t, snap.Session.ActiveTeamID)
	assert.Equal(t, "team_b", *snap.Session.ActiveTeamID)
	assert.Equal(t, "Team team_b", snap.Session.ActiveTeamName)

	for _, team := range snap.Teams {
		if team.ID == "team_b" {
			assert.Equal(t, models.StatusAnswering, team.Status)
		} else {
			assert.Equal(t, models.StatusWaiting, team.Status)
		}
	}
}

func TestSetRound(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")
	question := seedQuestion(t, svc, 1)

	require.NoError(t, svc.AdvanceQuestion(session.ID, question.ID))
	_, err := svc.Buzz(session.ID, "team_a")
	require.NoError(t, err)

	require.NoError(t, svc.SetRound(session.ID, 3))

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Session.CurrentRound)
	assert.Equal(t, models.RoundBuzzer, snap.Session.RoundType)
	assert.True(t, snap.Session.BuzzerEnabled)
	assert.False(t, snap.Session.BuzzerLocked)
	assert.Nil(t, snap.Session.ActiveTeamID)
	assert.Nil(t, snap.Session.CurrentQuestionID)

	require.NoError(t, svc.SetRound(session.ID, 1))
	snap, err = svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.False(t, snap.Session.BuzzerEnabled)
	assert.Equal(t, models.RoundGeneral, snap.Session.RoundType)
}

func TestSnapshotOrdersTeamsByScore(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b", "team_c")

	_, err := svc.AdjustScore(session.ID, "team_b", 30)
	require.NoError(t, err)
	_, err = svc.AdjustScore(session.ID, "team_c", 10)
	require.NoError(t, err)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	require.Len(t, snap.Teams, 3)
	assert.Equal(t, "team_b", snap.Teams[0].ID)
	assert.Equal(t, "team_c", snap.Teams[1].ID)
	assert.Equal(t, "team_a", snap.Teams[2].ID)
}

func TestSnapshotUnknownSession(t *testing.T) {
	svc := newTestSessionService(t)

	_, err := svc.Snapshot("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVersionIncreasesWithEachMutation(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")
	question := seedQuestion(t, svc, 1)

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	last := snap.Session.Version

	mutations := []func() error{
		func() error { _, err := svc.AdjustScore(session.ID, "team_a", 5); return err },
		func() error { return svc.SetStatus(session.ID, "team_a", models.StatusAnswering) },
		func() error { return svc.AdvanceQuestion(session.ID, question.ID) },
		func() error { _, err := svc.Buzz(session.ID, "team_a"); return err },
		func() error { return svc.ResetBuzzer(session.ID) },
	}

	for _, mutate := range mutations {
		require.NoError(t, mutate())
		snap, err = svc.Snapshot(session.ID)
		require.NoError(t, err)
		assert.Greater(t, snap.Session.Version, last)
		last = snap.Session.Version
	}
}

func TestResetAllTeams(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a", "team_b")

	_, err := svc.AdjustScore(session.ID, "team_a", 40)
	require.NoError(t, err)
	_, err = svc.Buzz(session.ID, "team_b")
	require.NoError(t, err)

	require.NoError(t, svc.ResetAllTeams(session.ID))

	snap, err := svc.Snapshot(session.ID)
	require.NoError(t, err)
	assert.False(t, snap.Session.BuzzerLocked)
	assert.Nil(t, snap.Session.ActiveTeamID)
	for _, team := range snap.Teams {
		assert.Equal(t, 0, team.Score)
		assert.Equal(t, models.StatusWaiting, team.Status)
	}
}

func TestCreateTeamGeneratesUniqueCodes(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		team, err := svc.CreateTeam(session.ID, "", "Team")
		require.NoError(t, err)
		require.Len(t, team.Code, 6)
		assert.False(t, seen[team.Code])
		seen[team.Code] = true
	}
}

func TestTeamByCode(t *testing.T) {
	svc := newTestSessionService(t)
	session := seedSession(t, svc, "team_a")

	teams, err := svc.Teams(session.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)

	team, err := svc.TeamByCode(teams[0].Code)
	require.NoError(t, err)
	assert.Equal(t, "team_a", team.ID)

	_, err = svc.TeamByCode("nope")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}
