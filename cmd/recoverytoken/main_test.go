package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charmas3r/recovery-token-project-sub000/docstore"
	"github.com/charmas3r/recovery-token-project-sub000/roster"
	"github.com/charmas3r/recovery-token-project-sub000/sobriety"
)

func TestPrintReport(t *testing.T) {
	clean := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	result, err := sobriety.CalculateMilestones(clean, now)
	require.NoError(t, err)

	var buf strings.Builder
	printReport(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "30 days sober")
	assert.Contains(t, out, "30 Days — achieved 2024-01-31")
	assert.Contains(t, out, "next: 60 Days in 30 days (2024-03-01)")
}

func TestPrintReportAllReached(t *testing.T) {
	result := sobriety.Result{TotalDays: 5000}

	var buf strings.Builder
	printReport(&buf, result)

	assert.Contains(t, buf.String(), "all milestones reached")
}

func TestParseMemberInput(t *testing.T) {
	input, err := parseMemberInput("Jane", "2023-06-15", "friend", "aa")
	require.NoError(t, err)
	assert.Equal(t, "Jane", input.Name)
	assert.Equal(t, "2023-06-15", input.CleanDate.String())
	assert.Equal(t, roster.RelationshipFriend, input.Relationship)
	assert.Equal(t, roster.ProgramAA, input.Program)

	_, err = parseMemberInput("Jane", "15/06/2023", "", "")
	assert.Error(t, err)
}

func TestWithConflictRetry(t *testing.T) {
	attempts := 0
	err := withConflictRetry(func() error {
		attempts++
		if attempts < 2 {
			return docstore.ErrConflict
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithConflictRetryGivesUp(t *testing.T) {
	attempts := 0
	err := withConflictRetry(func() error {
		attempts++
		return docstore.ErrConflict
	})
	assert.ErrorIs(t, err, docstore.ErrConflict)
	assert.Equal(t, conflictRetries, attempts)
}

func TestWithConflictRetryDoesNotRetryOtherErrors(t *testing.T) {
	attempts := 0
	boom := fmt.Errorf("%w: nats gone", docstore.ErrUnavailable)
	err := withConflictRetry(func() error {
		attempts++
		return boom
	})
	assert.True(t, errors.Is(err, docstore.ErrUnavailable))
	assert.Equal(t, 1, attempts, "only conflicts are retried")
}
