package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/courtbooker/internal/metrics"
	"github.com/mauv0809/courtbooker/internal/notifier"
)

type mockSlackAPI struct {
	calls   int
	channel string
	err     error
}

func (m *mockSlackAPI) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	m.calls++
	m.channel = channelID
	if m.err != nil {
		return "", "", m.err
	}
	return channelID, "123.456", nil
}

func TestSendRunResultPostsMessage(t *testing.T) {
	api := &mockSlackAPI{}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	err := n.SendRunResult(notifier.RunOutcome{
		Date:      "12/09/2026",
		Hour:      "14:00",
		CourtID:   "1456",
		CourtName: "Agence Donibane",
	}, false)

	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "C123", api.channel)
	assert.Equal(t, 1, m.NotifSentCount)
	assert.Zero(t, m.NotifFailedCount)
}

func TestSendRunResultDryRunSkipsAPI(t *testing.T) {
	api := &mockSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	err := n.SendRunResult(notifier.RunOutcome{Date: "12/09/2026", Hour: "14:00"}, true)
	require.NoError(t, err)
	assert.Zero(t, api.calls)
}

func TestSendRunResultAPIFailure(t *testing.T) {
	api := &mockSlackAPI{err: errors.New("channel_not_found")}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	err := n.SendRunResult(notifier.RunOutcome{Date: "12/09/2026"}, false)
	require.Error(t, err)
	assert.Equal(t, 1, m.NotifFailedCount)
	assert.Zero(t, m.NotifSentCount)
}

func TestSendRunResultNilMetrics(t *testing.T) {
	api := &mockSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", nil)
	assert.NoError(t, n.SendRunResult(notifier.RunOutcome{Date: "12/09/2026"}, false))
}

func TestFormatRunResultSuccess(t *testing.T) {
	msg := FormatRunResult(notifier.RunOutcome{
		Date:      "12/09/2026",
		Hour:      "14:00",
		CourtID:   "1456",
		CourtName: "Agence Donibane",
	})

	require.NotEmpty(t, msg.Blocks.BlockSet)
	header, ok := msg.Blocks.BlockSet[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "booked")
}

func TestFormatRunResultFailure(t *testing.T) {
	msg := FormatRunResult(notifier.RunOutcome{
		Date: "12/09/2026",
		Err:  "no eligible slot among 3 candidate(s)",
	})

	require.NotEmpty(t, msg.Blocks.BlockSet)
	header, ok := msg.Blocks.BlockSet[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Contains(t, header.Text.Text, "failed")

	section, ok := msg.Blocks.BlockSet[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "no eligible slot")
}

func TestFormatRunResultContextNotes(t *testing.T) {
	msg := FormatRunResult(notifier.RunOutcome{
		ConfigName: "spool/config_20260912_x.yaml",
		Date:       "12/09/2026",
		Hour:       "14:00",
		TestMode:   true,
		MockMode:   true,
	})

	contexts := 0
	for _, block := range msg.Blocks.BlockSet {
		if _, ok := block.(*slack.ContextBlock); ok {
			contexts++
		}
	}
	assert.Equal(t, 3, contexts)
}
