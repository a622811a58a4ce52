package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/designlens/designlens/internal/domain"
)

func TestLoad_EmptyHistory(t *testing.T) {
	h := New(".designlens")
	entries, err := h.Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestAppend_AccumulatesEntries(t *testing.T) {
	project := t.TempDir()
	h := New(".designlens")

	first := domain.SessionEntry{
		SessionID:     "ses-1",
		Timestamp:     "2026-08-30T10:00:00Z",
		OverallStatus: domain.StatusPass,
		Views:         2,
	}
	second := domain.SessionEntry{
		SessionID:     "ses-2",
		Timestamp:     "2026-08-30T11:00:00Z",
		OverallStatus: domain.StatusFail,
		Views:         1,
		Findings:      4,
	}

	require.NoError(t, h.Append(project, first))
	require.NoError(t, h.Append(project, second))

	entries, err := h.Load(project)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ses-1", entries[0].SessionID)
	assert.Equal(t, "ses-2", entries[1].SessionID)
	assert.Equal(t, domain.StatusFail, entries[1].OverallStatus)
	assert.Equal(t, 4, entries[1].Findings)
}
